package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func optionalRef[T any](tx *gorm.DB, field string, entity string, id *int) error {
	if id == nil {
		return nil
	}
	return requireRef[T](tx, field, entity, *id)
}

func optionalStringRef[T any](tx *gorm.DB, field string, entity string, id *string) error {
	if id == nil {
		return nil
	}
	return requireRef[T](tx, field, entity, *id)
}

func init() {
	register(&tableCodec[Fund]{
		tag: "funds",
		columns: []column[Fund]{
			strCol("id", func(r *Fund) *string { return &r.ID }),
			strCol("code", func(r *Fund) *string { return &r.Code }),
			intCol("year", func(r *Fund) *int { return &r.Year }),
			strCol("name", func(r *Fund) *string { return &r.Name }),
			intPtrCol("dept_id", func(r *Fund) **int { return &r.DeptId }),
			strCol("sof", func(r *Fund) *string { return &r.Sof }),
			boolCol("mac_elig", func(r *Fund) *bool { return &r.MacElig }),
			moneyCol("cash_balance", func(r *Fund) *decimal.Decimal { return &r.CashBalance }),
			moneyCol("total", func(r *Fund) *decimal.Decimal { return &r.Total }),
		},
		refs: func(tx *gorm.DB, r *Fund) error {
			return optionalRef[Dept](tx, "dept_id", "dept", r.DeptId)
		},
	})

	register(&tableCodec[Line]{
		tag: "lines",
		columns: []column[Line]{
			strCol("id", func(r *Line) *string { return &r.ID }),
			strCol("code", func(r *Line) *string { return &r.Code }),
			strCol("fund_id", func(r *Line) *string { return &r.FundId }),
			intCol("fund_year", func(r *Line) *int { return &r.FundYear }),
			strCol("name", func(r *Line) *string { return &r.Name }),
			enumCol("type", func(r *Line) *LineType { return &r.Type }),
			moneyCol("budgeted", func(r *Line) *decimal.Decimal { return &r.Budgeted }),
			moneyCol("budget_spent", func(r *Line) *decimal.Decimal { return &r.BudgetSpent }),
			moneyCol("total_income", func(r *Line) *decimal.Decimal { return &r.TotalIncome }),
			intPtrCol("dept_id", func(r *Line) **int { return &r.DeptId }),
			boolCol("cofund", func(r *Line) *bool { return &r.Cofund }),
			strCol("gen_ledger", func(r *Line) *string { return &r.GenLedger }),
			strCol("county_code", func(r *Line) *string { return &r.CountyCode }),
		},
		refs: func(tx *gorm.DB, r *Line) error {
			if !r.Type.IsValid() {
				return badValue("type", "type must be Revenue or Expense")
			}
			if err := requireRef[Fund](tx, "fund_id", "fund", r.FundId); err != nil {
				return err
			}
			return optionalRef[Dept](tx, "dept_id", "dept", r.DeptId)
		},
	})

	register(&tableCodec[Item]{
		tag: "items",
		columns: []column[Item]{
			intCol("id", func(r *Item) *int { return &r.ID }),
			strCol("name", func(r *Item) *string { return &r.Name }),
			strCol("line_id", func(r *Item) *string { return &r.LineId }),
			strCol("fund_id", func(r *Item) *string { return &r.FundId }),
			strCol("fund_type", func(r *Item) *string { return &r.FundType }),
			intCol("fund_year", func(r *Item) *int { return &r.FundYear }),
			strCol("line_item", func(r *Item) *string { return &r.LineItem }),
			strCol("category", func(r *Item) *string { return &r.Category }),
			boolCol("fee_based", func(r *Item) *bool { return &r.FeeBased }),
			intCol("month", func(r *Item) *int { return &r.Month }),
		},
		refs: func(tx *gorm.DB, r *Item) error {
			if err := requireRef[Line](tx, "line_id", "line", r.LineId); err != nil {
				return err
			}
			return requireRef[Fund](tx, "fund_id", "fund", r.FundId)
		},
	})

	register(&tableCodec[Grant]{
		tag: "grants",
		columns: []column[Grant]{
			intCol("id", func(r *Grant) *int { return &r.ID }),
			strCol("name", func(r *Grant) *string { return &r.Name }),
			strCol("fund_id", func(r *Grant) *string { return &r.FundId }),
			intCol("year", func(r *Grant) *int { return &r.Year }),
			strCol("cfda", func(r *Grant) *string { return &r.Cfda }),
			strCol("program_name", func(r *Grant) *string { return &r.ProgramName }),
			moneyCol("award_amount", func(r *Grant) *decimal.Decimal { return &r.AwardAmount }),
			strCol("pt_no", func(r *Grant) *string { return &r.PtNo }),
			boolCol("active", func(r *Grant) *bool { return &r.Active }),
			dateCol("beg_date", func(r *Grant) *time.Time { return &r.BegDate }),
			dateCol("end_date", func(r *Grant) *time.Time { return &r.EndDate }),
			strCol("fsid", func(r *Grant) *string { return &r.Fsid }),
			strCol("funder", func(r *Grant) *string { return &r.Funder }),
			intCol("max_revenue_lines", func(r *Grant) *int { return &r.MaxRevenueLines }),
		},
		refs: func(tx *gorm.DB, r *Grant) error {
			return requireRef[Fund](tx, "fund_id", "fund", r.FundId)
		},
	})

	register(&tableCodec[GrantLine]{
		tag: "grant_lines",
		columns: []column[GrantLine]{
			intCol("id", func(r *GrantLine) *int { return &r.ID }),
			intCol("grant_id", func(r *GrantLine) *int { return &r.GrantId }),
			strCol("name", func(r *GrantLine) *string { return &r.Name }),
			enumCol("type", func(r *GrantLine) *LineType { return &r.Type }),
			moneyCol("budgeted", func(r *GrantLine) *decimal.Decimal { return &r.Budgeted }),
			moneyCol("budget_spent", func(r *GrantLine) *decimal.Decimal { return &r.BudgetSpent }),
			moneyCol("total_income", func(r *GrantLine) *decimal.Decimal { return &r.TotalIncome }),
		},
		refs: func(tx *gorm.DB, r *GrantLine) error {
			if !r.Type.IsValid() {
				return badValue("type", "type must be Revenue or Expense")
			}
			return requireRef[Grant](tx, "grant_id", "grant", r.GrantId)
		},
	})

	register(&tableCodec[Dept]{
		tag: "depts",
		columns: []column[Dept]{
			intCol("id", func(r *Dept) *int { return &r.ID }),
			strCol("name", func(r *Dept) *string { return &r.Name }),
		},
	})

	register(&tableCodec[People]{
		tag: "people",
		columns: []column[People]{
			intCol("id", func(r *People) *int { return &r.ID }),
			strCol("name", func(r *People) *string { return &r.Name }),
			strCol("address", func(r *People) *string { return &r.Address }),
			strCol("city", func(r *People) *string { return &r.City }),
			strCol("state", func(r *People) *string { return &r.State }),
			strCol("zip_code", func(r *People) *string { return &r.ZipCode }),
			strCol("phone", func(r *People) *string { return &r.Phone }),
			strCol("email", func(r *People) *string { return &r.Email }),
			strCol("primary_contact", func(r *People) *string { return &r.PrimaryContact }),
			strCol("ein", func(r *People) *string { return &r.Ein }),
			strCol("account_number", func(r *People) *string { return &r.AccountNumber }),
		},
	})

	register(&tableCodec[Employee]{
		tag: "employees",
		columns: []column[Employee]{
			intCol("id", func(r *Employee) *int { return &r.ID }),
			strCol("first_name", func(r *Employee) *string { return &r.FirstName }),
			strCol("surname", func(r *Employee) *string { return &r.Surname }),
			intPtrCol("dept_id", func(r *Employee) **int { return &r.DeptId }),
			strCol("street_address", func(r *Employee) *string { return &r.StreetAddress }),
			strCol("city", func(r *Employee) *string { return &r.City }),
			strCol("state", func(r *Employee) *string { return &r.State }),
			strCol("zip_code", func(r *Employee) *string { return &r.ZipCode }),
			strCol("phone", func(r *Employee) *string { return &r.Phone }),
			strCol("email", func(r *Employee) *string { return &r.Email }),
			dateCol("hire_date", func(r *Employee) *time.Time { return &r.HireDate }),
			decCol("yos", func(r *Employee) *decimal.Decimal { return &r.Yos }),
			strCol("job_title", func(r *Employee) *string { return &r.JobTitle }),
			moneyCol("pay_rate", func(r *Employee) *decimal.Decimal { return &r.PayRate }),
			strPtrCol("admin_pay_fund_id", func(r *Employee) **string { return &r.AdminPayFundId }),
			intPtrCol("pay_item_id", func(r *Employee) **int { return &r.PayItemId }),
			intPtrCol("special_pay_item_id", func(r *Employee) **int { return &r.SpecialPayItemId }),
			strPtrCol("special_fund_id", func(r *Employee) **string { return &r.SpecialFundId }),
			intPtrCol("user_id", func(r *Employee) **int { return &r.UserId }),
		},
		refs: func(tx *gorm.DB, r *Employee) error {
			if err := optionalRef[Dept](tx, "dept_id", "dept", r.DeptId); err != nil {
				return err
			}
			if err := optionalStringRef[Fund](tx, "admin_pay_fund_id", "fund", r.AdminPayFundId); err != nil {
				return err
			}
			if err := optionalRef[Item](tx, "pay_item_id", "item", r.PayItemId); err != nil {
				return err
			}
			if err := optionalRef[Item](tx, "special_pay_item_id", "item", r.SpecialPayItemId); err != nil {
				return err
			}
			if err := optionalStringRef[Fund](tx, "special_fund_id", "fund", r.SpecialFundId); err != nil {
				return err
			}
			return optionalRef[User](tx, "user_id", "user", r.UserId)
		},
	})

	register(&tableCodec[Activity]{
		tag: "activities",
		columns: []column[Activity]{
			intCol("id", func(r *Activity) *int { return &r.ID }),
			strCol("program", func(r *Activity) *string { return &r.Program }),
			intCol("dept_id", func(r *Activity) *int { return &r.DeptId }),
			strCol("fund_id", func(r *Activity) *string { return &r.FundId }),
			intCol("item_id", func(r *Activity) *int { return &r.ItemId }),
			boolCol("rev_gen", func(r *Activity) *bool { return &r.RevGen }),
			boolCol("active", func(r *Activity) *bool { return &r.Active }),
			strCol("fphs", func(r *Activity) *string { return &r.Fphs }),
			enumCol("pay_type", func(r *Activity) *PayType { return &r.PayType }),
		},
		refs: func(tx *gorm.DB, r *Activity) error {
			if !r.PayType.IsValid() {
				return badValue("pay_type", "pay type must be general, admin or special")
			}
			if err := requireRef[Dept](tx, "dept_id", "dept", r.DeptId); err != nil {
				return err
			}
			if err := requireRef[Fund](tx, "fund_id", "fund", r.FundId); err != nil {
				return err
			}
			return requireRef[Item](tx, "item_id", "item", r.ItemId)
		},
	})

	register(&tableCodec[PayPeriod]{
		tag: "pay_periods",
		columns: []column[PayPeriod]{
			strCol("id", func(r *PayPeriod) *string { return &r.ID }),
			dateCol("period_start", func(r *PayPeriod) *time.Time { return &r.PeriodStart }),
			dateCol("period_end", func(r *PayPeriod) *time.Time { return &r.PeriodEnd }),
		},
	})

	register(&tableCodec[Payroll]{
		tag: "payrolls",
		columns: []column[Payroll]{
			intCol("id", func(r *Payroll) *int { return &r.ID }),
			dateCol("beg_date", func(r *Payroll) *time.Time { return &r.BegDate }),
			dateCol("end_date", func(r *Payroll) *time.Time { return &r.EndDate }),
			intCol("employee_id", func(r *Payroll) *int { return &r.EmployeeId }),
			intCol("activity_id", func(r *Payroll) *int { return &r.ActivityId }),
			decCol("hours", func(r *Payroll) *decimal.Decimal { return &r.Hours }),
			moneyCol("pay_amount", func(r *Payroll) *decimal.Decimal { return &r.PayAmount }),
			strCol("pay_period_id", func(r *Payroll) *string { return &r.PayPeriodId }),
			strCol("expense_full_id", func(r *Payroll) *string { return &r.ExpenseFullId }),
		},
		refs: func(tx *gorm.DB, r *Payroll) error {
			if err := requireRef[Employee](tx, "employee_id", "employee", r.EmployeeId); err != nil {
				return err
			}
			if err := requireRef[Activity](tx, "activity_id", "activity", r.ActivityId); err != nil {
				return err
			}
			return requireRef[PayPeriod](tx, "pay_period_id", "pay period", r.PayPeriodId)
		},
	})

	register(&tableCodec[Expense]{
		tag: "expenses",
		columns: []column[Expense]{
			intCol("id", func(r *Expense) *int { return &r.ID }),
			intCol("item_id", func(r *Expense) *int { return &r.ItemId }),
			strCol("line_id", func(r *Expense) *string { return &r.LineId }),
			strCol("fund_id", func(r *Expense) *string { return &r.FundId }),
			intCol("employee_id", func(r *Expense) *int { return &r.EmployeeId }),
			intCol("people_id", func(r *Expense) *int { return &r.PeopleId }),
			intCol("activity_id", func(r *Expense) *int { return &r.ActivityId }),
			intPtrCol("grant_line_id", func(r *Expense) **int { return &r.GrantLineId }),
			moneyCol("amount", func(r *Expense) *decimal.Decimal { return &r.Amount }),
			dateCol("date", func(r *Expense) *time.Time { return &r.Date }),
			intCol("warrant", func(r *Expense) *int { return &r.Warrant }),
			enumCol("payment_type", func(r *Expense) *PaymentType { return &r.PaymentType }),
			strCol("comment", func(r *Expense) *string { return &r.Comment }),
			strCol("expense_full_id", func(r *Expense) *string { return &r.ExpenseFullId }),
		},
		refs: func(tx *gorm.DB, r *Expense) error {
			return postingRowRefs(tx, r.ItemId, r.LineId, r.FundId, r.EmployeeId, r.PeopleId, r.ActivityId, r.GrantLineId)
		},
	})

	register(&tableCodec[Revenue]{
		tag: "revenues",
		columns: []column[Revenue]{
			intCol("id", func(r *Revenue) *int { return &r.ID }),
			intCol("item_id", func(r *Revenue) *int { return &r.ItemId }),
			strCol("line_id", func(r *Revenue) *string { return &r.LineId }),
			strCol("fund_id", func(r *Revenue) *string { return &r.FundId }),
			intCol("employee_id", func(r *Revenue) *int { return &r.EmployeeId }),
			intCol("people_id", func(r *Revenue) *int { return &r.PeopleId }),
			intCol("activity_id", func(r *Revenue) *int { return &r.ActivityId }),
			intPtrCol("grant_line_id", func(r *Revenue) **int { return &r.GrantLineId }),
			moneyCol("amount", func(r *Revenue) *decimal.Decimal { return &r.Amount }),
			dateCol("date", func(r *Revenue) *time.Time { return &r.Date }),
			intCol("reference", func(r *Revenue) *int { return &r.Reference }),
			enumCol("payment_type", func(r *Revenue) *PaymentType { return &r.PaymentType }),
			strCol("comment", func(r *Revenue) *string { return &r.Comment }),
		},
		refs: func(tx *gorm.DB, r *Revenue) error {
			return postingRowRefs(tx, r.ItemId, r.LineId, r.FundId, r.EmployeeId, r.PeopleId, r.ActivityId, r.GrantLineId)
		},
	})

	register(&tableCodec[BudgetAction]{
		tag: "budget_actions",
		columns: []column[BudgetAction]{
			intCol("id", func(r *BudgetAction) *int { return &r.ID }),
			dateCol("date", func(r *BudgetAction) *time.Time { return &r.Date }),
			strCol("fssf_from", func(r *BudgetAction) *string { return &r.FssfFrom }),
			strCol("fssf_to", func(r *BudgetAction) *string { return &r.FssfTo }),
			strCol("comment", func(r *BudgetAction) *string { return &r.Comment }),
			moneyCol("amount", func(r *BudgetAction) *decimal.Decimal { return &r.Amount }),
			boolCol("approved", func(r *BudgetAction) *bool { return &r.Approved }),
			intCol("fs_res_no", func(r *BudgetAction) *int { return &r.FsResNo }),
		},
	})

	register(&tableCodec[Carryover]{
		tag: "carryovers",
		columns: []column[Carryover]{
			intCol("id", func(r *Carryover) *int { return &r.ID }),
			strCol("fund_id", func(r *Carryover) *string { return &r.FundId }),
			intCol("dept_id", func(r *Carryover) *int { return &r.DeptId }),
			intCol("fy", func(r *Carryover) *int { return &r.Fy }),
			moneyCol("co_amount", func(r *Carryover) *decimal.Decimal { return &r.CoAmount }),
			moneyCol("encumbered", func(r *Carryover) *decimal.Decimal { return &r.Encumbered }),
			moneyCol("year_end_balance", func(r *Carryover) *decimal.Decimal { return &r.YearEndBalance }),
			moneyCol("beg_balance", func(r *Carryover) *decimal.Decimal { return &r.BegBalance }),
			dateCol("fy_beg_date", func(r *Carryover) *time.Time { return &r.FyBegDate }),
			dateCol("fy_end_date", func(r *Carryover) *time.Time { return &r.FyEndDate }),
		},
		refs: func(tx *gorm.DB, r *Carryover) error {
			if err := requireRef[Fund](tx, "fund_id", "fund", r.FundId); err != nil {
				return err
			}
			return requireRef[Dept](tx, "dept_id", "dept", r.DeptId)
		},
	})

	register(&tableCodec[Variable]{
		tag: "variables",
		columns: []column[Variable]{
			intCol("id", func(r *Variable) *int { return &r.ID }),
			strCol("name", func(r *Variable) *string { return &r.Name }),
			decCol("value", func(r *Variable) *decimal.Decimal { return &r.Value }),
		},
	})

	register(&tableCodec[Benefits]{
		tag: "benefits",
		columns: []column[Benefits]{
			intCol("id", func(r *Benefits) *int { return &r.ID }),
			intCol("employee_id", func(r *Benefits) *int { return &r.EmployeeId }),
			decCol("hrs_per_pay", func(r *Benefits) *decimal.Decimal { return &r.HrsPerPay }),
			boolCol("vac_elig", func(r *Benefits) *bool { return &r.VacElig }),
			enumCol("ins_type", func(r *Benefits) *HealthInsurance { return &r.InsType }),
			moneyCol("board_ins_share", func(r *Benefits) *decimal.Decimal { return &r.BoardInsShare }),
			enumCol("life_rate", func(r *Benefits) *LifeInsurance { return &r.LifeRate }),
		},
		refs: func(tx *gorm.DB, r *Benefits) error {
			return requireRef[Employee](tx, "employee_id", "employee", r.EmployeeId)
		},
	})
}

func postingRowRefs(tx *gorm.DB, itemId int, lineId string, fundId string, employeeId int, peopleId int, activityId int, grantLineId *int) error {
	if err := requireRef[Item](tx, "item_id", "item", itemId); err != nil {
		return err
	}
	if err := requireRef[Line](tx, "line_id", "line", lineId); err != nil {
		return err
	}
	if err := requireRef[Fund](tx, "fund_id", "fund", fundId); err != nil {
		return err
	}
	if err := postingRefs(tx, employeeId, peopleId, activityId); err != nil {
		return err
	}
	return optionalRef[GrantLine](tx, "grant_line_id", "grant line", grantLineId)
}
