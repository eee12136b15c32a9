package main

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/models"
)

func intId(s string) (int, error) {
	return strconv.Atoi(s)
}

func stringId(s string) (string, error) {
	return s, nil
}

func queryInt(c *gin.Context, name string) (int, bool) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return n, true
}

func queryBool(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

func listHandler[Out any](name string, list func(c *gin.Context) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := list(c)
		if err != nil {
			if !c.IsAborted() {
				respondError(c, name, err)
			}
			return
		}
		if c.IsAborted() {
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func createHandler[In any, Out any](name string, create func(context.Context, *In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		out, err := create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, name, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	}
}

func getHandler[K any, Out any](name string, parse func(string) (K, error), get func(context.Context, K) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parse(c.Param("id"))
		if err != nil {
			badRequest(c, "invalid id")
			return
		}
		out, err := get(c.Request.Context(), id)
		if err != nil {
			respondError(c, name, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func updateHandler[K any, In any, Out any](name string, parse func(string) (K, error), update func(context.Context, K, *In) (Out, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parse(c.Param("id"))
		if err != nil {
			badRequest(c, "invalid id")
			return
		}
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, "invalid request")
			return
		}
		out, err := update(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, name, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

// crud bundles the handlers of one resource.
type crud[K any, In any, Up any, Out any] struct {
	path   string
	parse  func(string) (K, error)
	list   gin.HandlerFunc
	create func(context.Context, *In) (Out, error)
	get    func(context.Context, K) (Out, error)
	update func(context.Context, K, *Up) (Out, error)
	delete func(context.Context, K) (Out, error)
}

func (r crud[K, In, Up, Out]) register(g *gin.RouterGroup) {
	g.GET(r.path, r.list)
	g.POST(r.path, createHandler(r.path+".create", r.create))
	g.GET(r.path+"/:id", getHandler(r.path+".get", r.parse, r.get))
	g.PUT(r.path+"/:id", updateHandler(r.path+".update", r.parse, r.update))
	g.DELETE(r.path+"/:id", getHandler(r.path+".delete", r.parse, r.delete))
}

func registerMasterData(g *gin.RouterGroup) {
	crud[string, models.NewFund, models.UpdateFundInput, *models.Fund]{
		path:  "/funds",
		parse: stringId,
		list: listHandler("/funds.list", func(c *gin.Context) ([]*models.Fund, error) {
			year, ok := queryInt(c, "year")
			if !ok {
				return nil, nil
			}
			return models.ListFunds(c.Request.Context(), year)
		}),
		create: models.CreateFund,
		get:    models.GetFund,
		update: models.UpdateFund,
		delete: models.DeleteFund,
	}.register(g)
	g.GET("/funds/:id/summary", getHandler("/funds.summary", stringId, models.GetFundBudgetSummary))

	crud[string, models.NewLine, models.UpdateLineInput, *models.Line]{
		path:  "/lines",
		parse: stringId,
		list: listHandler("/lines.list", func(c *gin.Context) ([]*models.Line, error) {
			year, ok := queryInt(c, "year")
			if !ok {
				return nil, nil
			}
			return models.ListLines(c.Request.Context(), c.Query("fund_id"), year)
		}),
		create: models.CreateLine,
		get:    models.GetLine,
		update: models.UpdateLine,
		delete: models.DeleteLine,
	}.register(g)

	crud[int, models.NewItem, models.UpdateItemInput, *models.Item]{
		path:  "/items",
		parse: intId,
		list: listHandler("/items.list", func(c *gin.Context) ([]*models.Item, error) {
			year, ok := queryInt(c, "year")
			if !ok {
				return nil, nil
			}
			return models.ListItems(c.Request.Context(), c.Query("line_id"), year)
		}),
		create: models.CreateItem,
		get:    models.GetItem,
		update: models.UpdateItem,
		delete: models.DeleteItem,
	}.register(g)

	crud[int, models.NewGrant, models.NewGrant, *models.Grant]{
		path:  "/grants",
		parse: intId,
		list: listHandler("/grants.list", func(c *gin.Context) ([]*models.Grant, error) {
			return models.ListGrants(c.Request.Context(), queryBool(c, "active"))
		}),
		create: models.CreateGrant,
		get:    models.GetGrant,
		update: models.UpdateGrant,
		delete: models.DeleteGrant,
	}.register(g)

	crud[int, models.NewGrantLine, models.UpdateGrantLineInput, *models.GrantLine]{
		path:  "/grant-lines",
		parse: intId,
		list: listHandler("/grant-lines.list", func(c *gin.Context) ([]*models.GrantLine, error) {
			grantId, ok := queryInt(c, "grant_id")
			if !ok {
				return nil, nil
			}
			return models.ListGrantLines(c.Request.Context(), grantId)
		}),
		create: models.CreateGrantLine,
		get:    models.GetGrantLine,
		update: models.UpdateGrantLine,
		delete: models.DeleteGrantLine,
	}.register(g)

	crud[int, models.NewDept, models.NewDept, *models.Dept]{
		path:  "/depts",
		parse: intId,
		list: listHandler("/depts.list", func(c *gin.Context) ([]*models.Dept, error) {
			return models.ListDepts(c.Request.Context())
		}),
		create: models.CreateDept,
		get:    models.GetDept,
		update: models.UpdateDept,
		delete: models.DeleteDept,
	}.register(g)

	crud[int, models.NewPeople, models.NewPeople, *models.People]{
		path:  "/people",
		parse: intId,
		list: listHandler("/people.list", func(c *gin.Context) ([]*models.People, error) {
			return models.ListPeople(c.Request.Context())
		}),
		create: models.CreatePeople,
		get:    models.GetPeople,
		update: models.UpdatePeople,
		delete: models.DeletePeople,
	}.register(g)

	crud[int, models.NewEmployee, models.NewEmployee, *models.Employee]{
		path:  "/employees",
		parse: intId,
		list: listHandler("/employees.list", func(c *gin.Context) ([]*models.Employee, error) {
			return models.ListEmployees(c.Request.Context())
		}),
		create: models.CreateEmployee,
		get:    models.GetEmployee,
		update: models.UpdateEmployee,
		delete: models.DeleteEmployee,
	}.register(g)

	crud[int, models.NewActivity, models.NewActivity, *models.Activity]{
		path:  "/activities",
		parse: intId,
		list: listHandler("/activities.list", func(c *gin.Context) ([]*models.Activity, error) {
			return models.ListActivities(c.Request.Context(), queryBool(c, "active"))
		}),
		create: models.CreateActivity,
		get:    models.GetActivity,
		update: models.UpdateActivity,
		delete: models.DeleteActivity,
	}.register(g)

	crud[string, models.NewPayPeriod, models.NewPayPeriod, *models.PayPeriod]{
		path:  "/pay-periods",
		parse: stringId,
		list: listHandler("/pay-periods.list", func(c *gin.Context) ([]*models.PayPeriod, error) {
			return models.ListPayPeriods(c.Request.Context())
		}),
		create: models.CreatePayPeriod,
		get:    models.GetPayPeriod,
		update: models.UpdatePayPeriod,
		delete: models.DeletePayPeriod,
	}.register(g)

	crud[int, models.NewVariable, models.NewVariable, *models.Variable]{
		path:  "/variables",
		parse: intId,
		list: listHandler("/variables.list", func(c *gin.Context) ([]*models.Variable, error) {
			return models.ListVariables(c.Request.Context())
		}),
		create: models.CreateVariable,
		get:    models.GetVariable,
		update: models.UpdateVariable,
		delete: models.DeleteVariable,
	}.register(g)

	crud[int, models.NewBenefits, models.NewBenefits, *models.Benefits]{
		path:  "/benefits",
		parse: intId,
		list: listHandler("/benefits.list", func(c *gin.Context) ([]*models.Benefits, error) {
			return models.ListBenefits(c.Request.Context())
		}),
		create: models.CreateBenefits,
		get:    models.GetBenefits,
		update: models.UpdateBenefits,
		delete: models.DeleteBenefits,
	}.register(g)
	g.GET("/benefits/calculate/:id", getHandler("/benefits.calculate", intId, models.CalculateBenefits))

	crud[int, models.NewBudgetAction, models.NewBudgetAction, *models.BudgetAction]{
		path:  "/budget-actions",
		parse: intId,
		list: listHandler("/budget-actions.list", func(c *gin.Context) ([]*models.BudgetAction, error) {
			var approved *bool
			if c.Query("approved") != "" {
				v := queryBool(c, "approved")
				approved = &v
			}
			return models.ListBudgetActions(c.Request.Context(), approved)
		}),
		create: models.CreateBudgetAction,
		get:    models.GetBudgetAction,
		update: models.UpdateBudgetAction,
		delete: models.DeleteBudgetAction,
	}.register(g)

	crud[int, models.NewCarryover, models.NewCarryover, *models.Carryover]{
		path:  "/carryovers",
		parse: intId,
		list: listHandler("/carryovers.list", func(c *gin.Context) ([]*models.Carryover, error) {
			fy, ok := queryInt(c, "fy")
			if !ok {
				return nil, nil
			}
			return models.ListCarryovers(c.Request.Context(), c.Query("fund_id"), fy)
		}),
		create: models.CreateCarryover,
		get:    models.GetCarryover,
		update: models.UpdateCarryover,
		delete: models.DeleteCarryover,
	}.register(g)

	g.GET("/payrolls", listHandler("/payrolls.list", func(c *gin.Context) ([]*models.Payroll, error) {
		employeeId, ok := queryInt(c, "employee_id")
		if !ok {
			return nil, nil
		}
		return models.ListPayrolls(c.Request.Context(), c.Query("pay_period"), employeeId)
	}))
	g.GET("/payrolls/:id", getHandler("/payrolls.get", intId, models.GetPayroll))
}
