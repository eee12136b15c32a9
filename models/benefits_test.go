package models_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/wchd/budget_backend/models"
)

func TestBenefitsCalculate(t *testing.T) {
	employee := &models.Employee{ID: 7, FirstName: "Ada", Surname: "Lane", PayRate: dec("20"), Yos: dec("5")}
	b := &models.Benefits{EmployeeId: 7, HrsPerPay: dec("80"), VacElig: true}

	c := b.Calculate(employee, decimal.Zero)

	cases := []struct {
		name string
		got  decimal.Decimal
		want string
	}{
		{"pers", c.Pers, "2.80"},
		{"medicare", c.Medicare, "0.29"},
		{"wc", c.Wc, "0"},
		{"plar", c.Plar, "0.19"},
		{"vacation", c.Vacation, "3.80"},
		{"sick", c.Sick, "1.15"},
		{"holiday", c.Holiday, "1.07"},
		{"total hourly", c.TotalHourly, "29.11"},
		{"percent leave", c.PercentLeave, "20.68"},
		{"monthly hours", c.MonthlyHours, "320"},
		{"salary", c.Salary, "1600"},
		{"fringes", c.Fringes, "6427.20"},
		{"total comp", c.TotalComp, "8027.20"},
	}
	for _, tc := range cases {
		if !tc.got.Equal(dec(tc.want)) {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, tc.got)
		}
	}
	if c.EmployeeName != "Ada Lane" {
		t.Fatalf("unexpected employee name %q", c.EmployeeName)
	}
}

func TestBenefitsCalculate_PlarStepsWithService(t *testing.T) {
	b := &models.Benefits{HrsPerPay: dec("80")}
	for yos, want := range map[string]string{"10": "0.58", "15": "1.16", "30": "2.88"} {
		c := b.Calculate(&models.Employee{PayRate: dec("20"), Yos: dec(yos)}, decimal.Zero)
		if !c.Plar.Equal(dec(want)) {
			t.Fatalf("yos %s: expected plar %s, got %s", yos, want, c.Plar)
		}
		if !c.Vacation.IsZero() {
			t.Fatalf("yos %s: vacation accrued without eligibility", yos)
		}
	}
}

func TestBenefitsCalculate_SpreadsMonthlyCostsOverHours(t *testing.T) {
	b := &models.Benefits{HrsPerPay: dec("80"), BoardInsShare: dec("640")}
	c := b.Calculate(&models.Employee{PayRate: dec("20")}, dec("32"))
	if !c.BoardShareHrly.Equal(dec("2")) {
		t.Fatalf("expected board share 2/hr, got %s", c.BoardShareHrly)
	}
	if !c.LifeHourly.Equal(dec("0.10")) {
		t.Fatalf("expected life 0.10/hr, got %s", c.LifeHourly)
	}
	// (2.80 + 0.29) * 80 * 26 + 640 * 12
	if !c.Fringes.Equal(dec("14107.20")) {
		t.Fatalf("expected fringes 14107.20, got %s", c.Fringes)
	}
}

func TestCalculateBenefits_RequiresBenefitsRow(t *testing.T) {
	ctx := setupDB(t)
	l := newLedger(t, ctx, "0")
	if _, err := models.CalculateBenefits(ctx, l.employee.ID); err == nil {
		t.Fatalf("expected missing benefits row to fail")
	}
	if _, err := models.CreateBenefits(ctx, &models.NewBenefits{EmployeeId: l.employee.ID, HrsPerPay: dec("80"), VacElig: true}); err != nil {
		t.Fatalf("create benefits: %v", err)
	}
	c, err := models.CalculateBenefits(ctx, l.employee.ID)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if !c.Salary.Equal(dec("1600")) {
		t.Fatalf("expected salary 1600, got %s", c.Salary)
	}
	if _, err := models.CreateBenefits(ctx, &models.NewBenefits{EmployeeId: l.employee.ID, HrsPerPay: dec("40")}); err == nil {
		t.Fatalf("expected second benefits row for the employee to be rejected")
	}
}
