package models

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

var (
	persRate       = decimal.RequireFromString("0.14")
	medicareRate   = decimal.RequireFromString("0.0145")
	wcHours        = decimal.RequireFromString("0.22")
	sickRate       = decimal.RequireFromString("0.0575")
	holidayHours   = decimal.NewFromInt(96)
	paysPerYear    = decimal.NewFromInt(26)
	weeksPerMonth  = decimal.NewFromInt(4)
	monthsPerYear  = decimal.NewFromInt(12)
	plarFactorBase = decimal.RequireFromString("0.03875")
	plarFactor8    = decimal.RequireFromString("0.0575")
	plarFactor15   = decimal.RequireFromString("0.0775")
	plarFactor25   = decimal.RequireFromString("0.096")
	oneHundred     = decimal.NewFromInt(100)
	yosEight       = decimal.NewFromInt(8)
	yosFifteen     = decimal.NewFromInt(15)
	yosTwentyFive  = decimal.NewFromInt(25)
)

// Benefits are the per-employee inputs of the fringe calculation.
type Benefits struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EmployeeId    int             `gorm:"uniqueIndex;not null" json:"employee_id"`
	HrsPerPay     decimal.Decimal `gorm:"type:decimal(6,2);not null" json:"hrs_per_pay"`
	VacElig       bool            `gorm:"not null;default:true" json:"vac_elig"`
	InsType       HealthInsurance `gorm:"size:10" json:"ins_type"`
	BoardInsShare decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"board_ins_share"`
	LifeRate      LifeInsurance   `gorm:"size:10;not null;default:'Ineligible'" json:"life_rate"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBenefits struct {
	EmployeeId    int             `json:"employee_id" validate:"required"`
	HrsPerPay     decimal.Decimal `json:"hrs_per_pay"`
	VacElig       bool            `json:"vac_elig"`
	InsType       HealthInsurance `json:"ins_type"`
	BoardInsShare decimal.Decimal `json:"board_ins_share"`
	LifeRate      LifeInsurance   `json:"life_rate"`
}

func (input *NewBenefits) validate(ctx context.Context, id int) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if !input.HrsPerPay.IsPositive() {
		return utils.NewValidationError("hrs_per_pay", "hours per pay must be greater than zero")
	}
	if input.BoardInsShare.IsNegative() {
		return utils.NewValidationError("board_ins_share", "board insurance share cannot be negative")
	}
	switch input.InsType {
	case "", HealthInsuranceSingle, HealthInsuranceWaived, HealthInsuranceEmpSpouse, HealthInsuranceEmpChild, HealthInsuranceFamily:
	default:
		return utils.NewValidationError("ins_type", "unknown insurance type")
	}
	switch input.LifeRate {
	case "":
		input.LifeRate = LifeInsuranceIneligible
	case LifeInsuranceIneligible, LifeInsuranceRate1, LifeInsuranceRate2:
	default:
		return utils.NewValidationError("life_rate", "unknown life insurance rate")
	}
	if err := utils.ValidateOptionalResourceId[Employee](ctx, "employee_id", "employee", &input.EmployeeId); err != nil {
		return err
	}
	return utils.ValidateUnique[Benefits](ctx, "employee_id", input.EmployeeId, id)
}

func (input *NewBenefits) apply(b *Benefits) {
	b.EmployeeId = input.EmployeeId
	b.HrsPerPay = input.HrsPerPay.Round(2)
	b.VacElig = input.VacElig
	b.InsType = input.InsType
	b.BoardInsShare = input.BoardInsShare.Round(2)
	b.LifeRate = input.LifeRate
}

func CreateBenefits(ctx context.Context, input *NewBenefits) (*Benefits, error) {
	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}
	var benefits Benefits
	input.apply(&benefits)
	if err := config.GetDB().WithContext(ctx).Create(&benefits).Error; err != nil {
		return nil, err
	}
	return &benefits, nil
}

func UpdateBenefits(ctx context.Context, id int, input *NewBenefits) (*Benefits, error) {
	benefits, err := utils.FetchModel[Benefits](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}
	input.apply(benefits)
	if err := config.GetDB().WithContext(ctx).Save(benefits).Error; err != nil {
		return nil, err
	}
	return benefits, nil
}

func DeleteBenefits(ctx context.Context, id int) (*Benefits, error) {
	benefits, err := utils.FetchModel[Benefits](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(benefits).Error; err != nil {
		return nil, err
	}
	return benefits, nil
}

func GetBenefits(ctx context.Context, id int) (*Benefits, error) {
	return utils.FetchModel[Benefits](ctx, id)
}

func ListBenefits(ctx context.Context) ([]*Benefits, error) {
	return utils.FetchAllModels[Benefits](ctx)
}

// BenefitsCalculation holds hourly figures except Salary, Fringes and TotalComp,
// which are per pay, per year and per year respectively.
type BenefitsCalculation struct {
	EmployeeId     int             `json:"employee_id"`
	EmployeeName   string          `json:"employee_name"`
	PayRate        decimal.Decimal `json:"pay_rate"`
	Pers           decimal.Decimal `json:"pers"`
	Medicare       decimal.Decimal `json:"medicare"`
	Wc             decimal.Decimal `json:"wc"`
	Plar           decimal.Decimal `json:"plar"`
	Vacation       decimal.Decimal `json:"vacation"`
	Sick           decimal.Decimal `json:"sick"`
	Holiday        decimal.Decimal `json:"holiday"`
	TotalHourly    decimal.Decimal `json:"total_hourly"`
	PercentLeave   decimal.Decimal `json:"percent_leave"`
	MonthlyHours   decimal.Decimal `json:"monthly_hours"`
	BoardShareHrly decimal.Decimal `json:"board_share_hourly"`
	LifeHourly     decimal.Decimal `json:"life_hourly"`
	Salary         decimal.Decimal `json:"salary"`
	Fringes        decimal.Decimal `json:"fringes"`
	TotalComp      decimal.Decimal `json:"total_comp"`
}

func plarFactor(yos decimal.Decimal) decimal.Decimal {
	switch {
	case yos.GreaterThanOrEqual(yosTwentyFive):
		return plarFactor25
	case yos.GreaterThanOrEqual(yosFifteen):
		return plarFactor15
	case yos.GreaterThanOrEqual(yosEight):
		return plarFactor8
	}
	return plarFactorBase
}

// Calculate rounds every intermediate to cents before it feeds the next figure.
// lifeRate is the value of the employee's life insurance variable, zero when ineligible.
func (b *Benefits) Calculate(employee *Employee, lifeRate decimal.Decimal) BenefitsCalculation {
	rate := employee.PayRate
	hrs := b.HrsPerPay
	c := BenefitsCalculation{
		EmployeeId:   employee.ID,
		EmployeeName: employee.FullName(),
		PayRate:      rate,
	}
	c.Pers = utils.RoundCents(rate.Mul(persRate))
	c.Medicare = utils.RoundCents(rate.Mul(medicareRate))
	if hrs.IsPositive() {
		c.Wc = utils.RoundCents(wcHours.Div(hrs))
	}
	c.Plar = utils.RoundCents(employee.Yos.Mul(plarFactor(employee.Yos)))
	if b.VacElig {
		c.Vacation = utils.RoundCents(c.Plar.Mul(rate))
	}
	c.Sick = utils.RoundCents(rate.Mul(sickRate))
	if hrs.IsPositive() {
		base := rate.Add(c.Pers).Add(c.Medicare).Add(c.Wc)
		c.Holiday = utils.RoundCents(holidayHours.Mul(base).Div(hrs.Mul(paysPerYear)))
	}
	c.TotalHourly = utils.RoundCents(rate.Add(c.Pers).Add(c.Medicare).Add(c.Wc).Add(c.Vacation).Add(c.Sick).Add(c.Holiday))
	if c.TotalHourly.IsPositive() {
		leave := c.Vacation.Add(c.Sick).Add(c.Holiday)
		c.PercentLeave = utils.RoundCents(leave.Div(c.TotalHourly).Mul(oneHundred))
	}
	c.MonthlyHours = utils.RoundCents(hrs.Mul(weeksPerMonth))
	if c.MonthlyHours.IsPositive() {
		c.BoardShareHrly = utils.RoundCents(b.BoardInsShare.Div(c.MonthlyHours))
		c.LifeHourly = utils.RoundCents(lifeRate.Div(c.MonthlyHours))
	}
	c.Salary = utils.RoundCents(rate.Mul(hrs))
	c.Fringes = utils.RoundCents(c.Pers.Add(c.Medicare).Mul(hrs).Mul(paysPerYear).Add(b.BoardInsShare.Mul(monthsPerYear)))
	c.TotalComp = utils.RoundCents(c.Salary.Add(c.Fringes))
	return c
}

func lifeRateValue(ctx context.Context, rate LifeInsurance) (decimal.Decimal, error) {
	switch rate {
	case LifeInsuranceRate1:
		return VariableValue(ctx, VariableInsuranceRate1)
	case LifeInsuranceRate2:
		return VariableValue(ctx, VariableInsuranceRate2)
	}
	return decimal.Zero, nil
}

// CalculateBenefits runs the calculation for one employee's benefits row.
func CalculateBenefits(ctx context.Context, employeeId int) (*BenefitsCalculation, error) {
	var benefits Benefits
	err := config.GetDB().WithContext(ctx).Where("employee_id = ?", employeeId).First(&benefits).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewIntegrityError("employee_id", "benefits", strconv.Itoa(employeeId), "no benefits recorded for employee")
		}
		return nil, err
	}
	employee, err := utils.FetchModel[Employee](ctx, employeeId)
	if err != nil {
		return nil, err
	}
	lifeRate, err := lifeRateValue(ctx, benefits.LifeRate)
	if err != nil {
		return nil, err
	}
	calc := benefits.Calculate(employee, lifeRate)
	return &calc, nil
}

// CalculateAllBenefits runs the calculation for every employee with a benefits row.
func CalculateAllBenefits(ctx context.Context) ([]BenefitsCalculation, error) {
	rows, err := ListBenefits(ctx)
	if err != nil {
		return nil, err
	}
	rate1, err := VariableValue(ctx, VariableInsuranceRate1)
	if err != nil {
		return nil, err
	}
	rate2, err := VariableValue(ctx, VariableInsuranceRate2)
	if err != nil {
		return nil, err
	}
	var employees []Employee
	if err := config.GetDB().WithContext(ctx).Find(&employees).Error; err != nil {
		return nil, err
	}
	byId := make(map[int]*Employee, len(employees))
	for i := range employees {
		byId[employees[i].ID] = &employees[i]
	}
	results := make([]BenefitsCalculation, 0, len(rows))
	for _, b := range rows {
		employee, ok := byId[b.EmployeeId]
		if !ok {
			continue
		}
		lifeRate := decimal.Zero
		switch b.LifeRate {
		case LifeInsuranceRate1:
			lifeRate = rate1
		case LifeInsuranceRate2:
			lifeRate = rate2
		}
		results = append(results, b.Calculate(employee, lifeRate))
	}
	return results, nil
}
