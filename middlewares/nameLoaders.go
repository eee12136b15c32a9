package middlewares

import (
	"context"

	"github.com/wchd/budget_backend/models"
)

func GetFund(ctx context.Context, id string) (*models.Fund, error) {
	return For(ctx).FundLoader.Load(ctx, id)()
}

func GetLine(ctx context.Context, id string) (*models.Line, error) {
	return For(ctx).LineLoader.Load(ctx, id)()
}

func GetItem(ctx context.Context, id int) (*models.Item, error) {
	return For(ctx).ItemLoader.Load(ctx, id)()
}

func GetItems(ctx context.Context, ids []int) ([]*models.Item, []error) {
	return For(ctx).ItemLoader.LoadMany(ctx, ids)()
}

func GetEmployee(ctx context.Context, id int) (*models.Employee, error) {
	return For(ctx).EmployeeLoader.Load(ctx, id)()
}

func GetPeople(ctx context.Context, id int) (*models.People, error) {
	return For(ctx).PeopleLoader.Load(ctx, id)()
}

func GetActivity(ctx context.Context, id int) (*models.Activity, error) {
	return For(ctx).ActivityLoader.Load(ctx, id)()
}

// GetGrantLine returns nil for postings without a grant line.
func GetGrantLine(ctx context.Context, id *int) (*models.GrantLine, error) {
	if id == nil {
		return nil, nil
	}
	return For(ctx).GrantLineLoader.Load(ctx, *id)()
}
