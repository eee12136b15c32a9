package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/middlewares"
	"github.com/wchd/budget_backend/models"
	"github.com/wchd/budget_backend/utils"
)

// postingDate accepts YYYY-MM-DD or RFC3339. Empty means today.
func postingDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	loc, err := time.LoadLocation(config.TimeZone())
	if err != nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, utils.NewValidationError("date", "date must be YYYY-MM-DD")
	}
	return t, nil
}

func postingFilter(c *gin.Context) (models.PostingFilter, error) {
	filter := models.PostingFilter{
		FundId: c.Query("fund_id"),
		LineId: c.Query("line_id"),
	}
	var ok bool
	if filter.ItemId, ok = queryInt(c, "item_id"); !ok {
		return filter, nil
	}
	if filter.EmployeeId, ok = queryInt(c, "employee_id"); !ok {
		return filter, nil
	}
	var err error
	if filter.From, err = postingDate(c.Query("from")); err != nil {
		return filter, utils.NewValidationError("from", "from must be YYYY-MM-DD")
	}
	if filter.To, err = postingDate(c.Query("to")); err != nil {
		return filter, utils.NewValidationError("to", "to must be YYYY-MM-DD")
	}
	return filter, nil
}

type postingNames struct {
	LineName      string `json:"line_name"`
	ItemName      string `json:"item_name"`
	EmployeeName  string `json:"employee_name"`
	PeopleName    string `json:"people_name"`
	Program       string `json:"program"`
	GrantLineName string `json:"grant_line_name,omitempty"`
}

// loadPostingNames queues the lookups on the request loaders and returns a thunk resolving them.
func loadPostingNames(ctx context.Context, lineId string, itemId int, employeeId int, peopleId int, activityId int, grantLineId *int) func() (postingNames, error) {
	loaders := middlewares.For(ctx)
	line := loaders.LineLoader.Load(ctx, lineId)
	item := loaders.ItemLoader.Load(ctx, itemId)
	employee := loaders.EmployeeLoader.Load(ctx, employeeId)
	people := loaders.PeopleLoader.Load(ctx, peopleId)
	activity := loaders.ActivityLoader.Load(ctx, activityId)
	var grantLine func() (*models.GrantLine, error)
	if grantLineId != nil {
		grantLine = loaders.GrantLineLoader.Load(ctx, *grantLineId)
	}

	return func() (postingNames, error) {
		var names postingNames
		l, err := line()
		if err != nil {
			return names, err
		}
		i, err := item()
		if err != nil {
			return names, err
		}
		e, err := employee()
		if err != nil {
			return names, err
		}
		p, err := people()
		if err != nil {
			return names, err
		}
		a, err := activity()
		if err != nil {
			return names, err
		}
		names = postingNames{
			LineName:     l.Name,
			ItemName:     i.Name,
			EmployeeName: e.FullName(),
			PeopleName:   p.Name,
			Program:      a.Program,
		}
		if grantLine != nil {
			g, err := grantLine()
			if err != nil {
				return names, err
			}
			names.GrantLineName = g.Name
		}
		return names, nil
	}
}

type expenseRequest struct {
	models.NewExpense
	Date string `json:"date"`
}

type expenseView struct {
	*models.Expense
	postingNames
}

func createExpenseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req expenseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
		date, err := postingDate(req.Date)
		if err != nil {
			respondError(c, "createExpense", err)
			return
		}
		input := req.NewExpense
		input.Date = date
		expense, err := models.CreateExpense(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createExpense", err)
			return
		}
		c.JSON(http.StatusCreated, expense)
	}
}

func listExpensesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := postingFilter(c)
		if c.IsAborted() {
			return
		}
		if err != nil {
			respondError(c, "listExpenses", err)
			return
		}
		ctx := c.Request.Context()
		expenses, err := models.ListExpenses(ctx, filter)
		if err != nil {
			respondError(c, "listExpenses", err)
			return
		}
		thunks := make([]func() (postingNames, error), len(expenses))
		for i, e := range expenses {
			thunks[i] = loadPostingNames(ctx, e.LineId, e.ItemId, e.EmployeeId, e.PeopleId, e.ActivityId, e.GrantLineId)
		}
		views := make([]expenseView, len(expenses))
		for i, e := range expenses {
			names, err := thunks[i]()
			if err != nil {
				respondError(c, "listExpenses", err)
				return
			}
			views[i] = expenseView{Expense: e, postingNames: names}
		}
		c.JSON(http.StatusOK, views)
	}
}

type revenueRequest struct {
	models.NewRevenue
	Date string `json:"date"`
}

type revenueView struct {
	*models.Revenue
	postingNames
}

func createRevenueHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req revenueRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "invalid request")
			return
		}
		date, err := postingDate(req.Date)
		if err != nil {
			respondError(c, "createRevenue", err)
			return
		}
		input := req.NewRevenue
		input.Date = date
		revenue, err := models.CreateRevenue(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createRevenue", err)
			return
		}
		c.JSON(http.StatusCreated, revenue)
	}
}

func listRevenuesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := postingFilter(c)
		if c.IsAborted() {
			return
		}
		if err != nil {
			respondError(c, "listRevenues", err)
			return
		}
		ctx := c.Request.Context()
		revenues, err := models.ListRevenues(ctx, filter)
		if err != nil {
			respondError(c, "listRevenues", err)
			return
		}
		thunks := make([]func() (postingNames, error), len(revenues))
		for i, r := range revenues {
			thunks[i] = loadPostingNames(ctx, r.LineId, r.ItemId, r.EmployeeId, r.PeopleId, r.ActivityId, r.GrantLineId)
		}
		views := make([]revenueView, len(revenues))
		for i, r := range revenues {
			names, err := thunks[i]()
			if err != nil {
				respondError(c, "listRevenues", err)
				return
			}
			views[i] = revenueView{Revenue: r, postingNames: names}
		}
		c.JSON(http.StatusOK, views)
	}
}

func registerPostings(g *gin.RouterGroup) {
	g.POST("/expenses", createExpenseHandler())
	g.GET("/expenses", listExpensesHandler())
	g.GET("/expenses/:id", getHandler("/expenses.get", intId, models.GetExpense))
	g.POST("/revenues", createRevenueHandler())
	g.GET("/revenues", listRevenuesHandler())
	g.GET("/revenues/:id", getHandler("/revenues.get", intId, models.GetRevenue))
}
