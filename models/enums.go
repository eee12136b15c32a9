package models

type LineType string

const (
	LineTypeRevenue LineType = "Revenue"
	LineTypeExpense LineType = "Expense"
)

func (t LineType) IsValid() bool {
	return t == LineTypeRevenue || t == LineTypeExpense
}

type PaymentType string

const (
	PaymentTypeCash  PaymentType = "Cash"
	PaymentTypeCard  PaymentType = "Card"
	PaymentTypeCheck PaymentType = "Check"
)

func (t PaymentType) IsValid() bool {
	return t == PaymentTypeCash || t == PaymentTypeCard || t == PaymentTypeCheck
}

// PayType decides which item a payroll hour is charged to.
type PayType string

const (
	PayTypeGeneral PayType = "general"
	PayTypeAdmin   PayType = "admin"
	PayTypeSpecial PayType = "special"
)

func (t PayType) IsValid() bool {
	return t == PayTypeGeneral || t == PayTypeAdmin || t == PayTypeSpecial
}

type HealthInsurance string

const (
	HealthInsuranceSingle    HealthInsurance = "Single"
	HealthInsuranceWaived    HealthInsurance = "Waived"
	HealthInsuranceEmpSpouse HealthInsurance = "Emp-Spouse"
	HealthInsuranceEmpChild  HealthInsurance = "Emp-Child"
	HealthInsuranceFamily    HealthInsurance = "Family"
)

type LifeInsurance string

const (
	LifeInsuranceIneligible LifeInsurance = "Ineligible"
	LifeInsuranceRate1      LifeInsurance = "Rate 1"
	LifeInsuranceRate2      LifeInsurance = "Rate 2"
)

type UserRole string

const (
	UserRoleAdmin UserRole = "A"
	UserRoleStaff UserRole = "S"
)
