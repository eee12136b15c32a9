package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/utils"
	"gorm.io/gorm"
)

// Employee ids come from the county payroll system, so they are entered, not generated.
type Employee struct {
	ID               int             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	FirstName        string          `gorm:"size:255;not null" json:"first_name"`
	Surname          string          `gorm:"size:255;not null" json:"surname"`
	DeptId           *int            `json:"dept_id"`
	StreetAddress    string          `gorm:"size:255" json:"street_address"`
	City             string          `gorm:"size:255" json:"city"`
	State            string          `gorm:"size:2" json:"state"`
	ZipCode          string          `gorm:"size:10" json:"zip_code"`
	Phone            string          `gorm:"size:20" json:"phone"`
	Email            string          `gorm:"size:100" json:"email"`
	HireDate         time.Time       `gorm:"type:date" json:"hire_date"`
	Yos              decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"yos"`
	JobTitle         string          `gorm:"size:255" json:"job_title"`
	PayRate          decimal.Decimal `gorm:"type:decimal(20,4);not null;default:0" json:"pay_rate"`
	AdminPayFundId   *string         `gorm:"size:20" json:"admin_pay_fund_id"`
	PayItemId        *int            `json:"pay_item_id"`
	SpecialPayItemId *int            `json:"special_pay_item_id"`
	SpecialFundId    *string         `gorm:"size:20" json:"special_fund_id"`
	UserId           *int            `json:"user_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName is the natural key payroll files use for employees and people.
func (e *Employee) FullName() string {
	return e.FirstName + " " + e.Surname
}

type NewEmployee struct {
	ID               int             `json:"id" validate:"required,gt=0"`
	FirstName        string          `json:"first_name" validate:"required,max=255"`
	Surname          string          `json:"surname" validate:"required,max=255"`
	DeptId           *int            `json:"dept_id"`
	StreetAddress    string          `json:"street_address" validate:"max=255"`
	City             string          `json:"city" validate:"max=255"`
	State            string          `json:"state" validate:"omitempty,len=2"`
	ZipCode          string          `json:"zip_code" validate:"max=10"`
	Phone            string          `json:"phone" validate:"max=20"`
	Email            string          `json:"email" validate:"max=100"`
	HireDate         time.Time       `json:"hire_date"`
	Yos              decimal.Decimal `json:"yos"`
	JobTitle         string          `json:"job_title" validate:"max=255"`
	PayRate          decimal.Decimal `json:"pay_rate"`
	AdminPayFundId   *string         `json:"admin_pay_fund_id"`
	PayItemId        *int            `json:"pay_item_id"`
	SpecialPayItemId *int            `json:"special_pay_item_id"`
	SpecialFundId    *string         `json:"special_fund_id"`
	UserId           *int            `json:"user_id"`
}

func (input *NewEmployee) validate(ctx context.Context) error {
	if err := utils.ValidateInput(input); err != nil {
		return err
	}
	if input.PayRate.IsNegative() {
		return utils.NewValidationError("pay_rate", "pay rate cannot be negative")
	}
	if input.Yos.IsNegative() {
		return utils.NewValidationError("yos", "years of service cannot be negative")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.NewValidationError("phone", err.Error())
		}
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return utils.NewValidationError("email", "invalid email")
	}
	if err := utils.ValidateOptionalResourceId[Dept](ctx, "dept_id", "dept", input.DeptId); err != nil {
		return err
	}
	if err := utils.ValidateOptionalResourceId[Item](ctx, "pay_item_id", "item", input.PayItemId); err != nil {
		return err
	}
	if err := utils.ValidateOptionalResourceId[Item](ctx, "special_pay_item_id", "item", input.SpecialPayItemId); err != nil {
		return err
	}
	if err := utils.ValidateOptionalResourceId[User](ctx, "user_id", "user", input.UserId); err != nil {
		return err
	}
	for field, fundId := range map[string]*string{
		"admin_pay_fund_id": input.AdminPayFundId,
		"special_fund_id":   input.SpecialFundId,
	} {
		if fundId == nil {
			continue
		}
		if err := utils.ValidateResourceId[Fund](ctx, *fundId); err != nil {
			if errors.Is(err, utils.ErrorRecordNotFound) {
				return utils.NewIntegrityError(field, "fund", *fundId, "")
			}
			return err
		}
	}
	return nil
}

func (input *NewEmployee) apply(e *Employee) {
	e.FirstName = strings.TrimSpace(input.FirstName)
	e.Surname = strings.TrimSpace(input.Surname)
	e.DeptId = input.DeptId
	e.StreetAddress = input.StreetAddress
	e.City = input.City
	e.State = input.State
	e.ZipCode = input.ZipCode
	e.Phone = input.Phone
	e.Email = input.Email
	e.HireDate = utils.DateOnly(input.HireDate)
	e.Yos = input.Yos.Round(2)
	e.JobTitle = input.JobTitle
	e.PayRate = input.PayRate.Round(2)
	e.AdminPayFundId = input.AdminPayFundId
	e.PayItemId = input.PayItemId
	e.SpecialPayItemId = input.SpecialPayItemId
	e.SpecialFundId = input.SpecialFundId
	e.UserId = input.UserId
}

func CreateEmployee(ctx context.Context, input *NewEmployee) (*Employee, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Employee](ctx, "id", input.ID, nil); err != nil {
		return nil, err
	}
	employee := Employee{ID: input.ID}
	input.apply(&employee)
	if err := config.GetDB().WithContext(ctx).Create(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

// UpdateEmployee keeps the id; input.ID is ignored.
func UpdateEmployee(ctx context.Context, id int, input *NewEmployee) (*Employee, error) {
	employee, err := utils.FetchModel[Employee](ctx, id)
	if err != nil {
		return nil, err
	}
	input.ID = id
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	input.apply(employee)
	if err := config.GetDB().WithContext(ctx).Save(employee).Error; err != nil {
		return nil, err
	}
	return employee, nil
}

func DeleteEmployee(ctx context.Context, id int) (*Employee, error) {
	employee, err := utils.FetchModel[Employee](ctx, id)
	if err != nil {
		return nil, err
	}
	for _, check := range []func() (int64, error){
		func() (int64, error) { return utils.ResourceCountWhere[Expense](ctx, "employee_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Revenue](ctx, "employee_id = ?", id) },
		func() (int64, error) { return utils.ResourceCountWhere[Payroll](ctx, "employee_id = ?", id) },
	} {
		count, err := check()
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.NewValidationError("id", "employee has postings or payroll")
		}
	}
	db := config.GetDB().WithContext(ctx)
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", id).Delete(&Benefits{}).Error; err != nil {
			return err
		}
		return tx.Delete(employee).Error
	})
	if err != nil {
		return nil, err
	}
	return employee, nil
}

func GetEmployee(ctx context.Context, id int) (*Employee, error) {
	return utils.FetchModel[Employee](ctx, id)
}

func ListEmployees(ctx context.Context) ([]*Employee, error) {
	return utils.FetchAllModels[Employee](ctx)
}

// FindEmployeeByName resolves "First Surname" to an employee inside tx.
func FindEmployeeByName(tx *gorm.DB, fullName string) (*Employee, error) {
	first, surname, ok := strings.Cut(strings.Join(strings.Fields(fullName), " "), " ")
	if !ok {
		return nil, utils.NewIntegrityError("employee", "employee", fullName, "expected first name and surname")
	}
	var employee Employee
	err := tx.Where("first_name = ? AND surname = ?", first, surname).First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewIntegrityError("employee", "employee", fullName, "")
		}
		return nil, err
	}
	return &employee, nil
}
