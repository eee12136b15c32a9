package models

import (
	"github.com/wchd/budget_backend/config"
)

func MigrateTable() error {
	db := config.GetDB()

	return db.AutoMigrate(
		&Activity{},
		&Benefits{}, &BudgetAction{},
		&Carryover{},
		&Dept{},
		&Employee{}, &Expense{},
		&Fund{},
		&Grant{}, &GrantLine{},
		&Item{},
		&LedgerEventRecord{}, &Line{},
		&PayPeriod{}, &Payroll{}, &People{},
		&ReconciliationReport{}, &Revenue{},
		&User{},
		&Variable{},
	)
}
