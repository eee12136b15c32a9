package middlewares

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/graph-gophers/dataloader/v7"
	"github.com/wchd/budget_backend/config"
	"github.com/wchd/budget_backend/models"
	"gorm.io/gorm"
)

type ctxKey string

const (
	loadersKey = ctxKey("dataloaders")
)

// Loaders wrap the batched name lookups used by posting listings and reports.
type Loaders struct {
	FundLoader      *dataloader.Loader[string, *models.Fund]
	LineLoader      *dataloader.Loader[string, *models.Line]
	ItemLoader      *dataloader.Loader[int, *models.Item]
	EmployeeLoader  *dataloader.Loader[int, *models.Employee]
	PeopleLoader    *dataloader.Loader[int, *models.People]
	ActivityLoader  *dataloader.Loader[int, *models.Activity]
	GrantLineLoader *dataloader.Loader[int, *models.GrantLine]
}

// NewLoaders instantiates data loaders for the middleware
func NewLoaders(conn *gorm.DB) *Loaders {
	fundReader := &modelReader[string, models.Fund]{db: conn}
	lineReader := &modelReader[string, models.Line]{db: conn}
	itemReader := &modelReader[int, models.Item]{db: conn}
	employeeReader := &modelReader[int, models.Employee]{db: conn}
	peopleReader := &modelReader[int, models.People]{db: conn}
	activityReader := &modelReader[int, models.Activity]{db: conn}
	grantLineReader := &modelReader[int, models.GrantLine]{db: conn}

	return &Loaders{
		FundLoader:      dataloader.NewBatchedLoader(fundReader.load, dataloader.WithWait[string, *models.Fund](time.Millisecond)),
		LineLoader:      dataloader.NewBatchedLoader(lineReader.load, dataloader.WithWait[string, *models.Line](time.Millisecond)),
		ItemLoader:      dataloader.NewBatchedLoader(itemReader.load, dataloader.WithWait[int, *models.Item](time.Millisecond)),
		EmployeeLoader:  dataloader.NewBatchedLoader(employeeReader.load, dataloader.WithWait[int, *models.Employee](time.Millisecond)),
		PeopleLoader:    dataloader.NewBatchedLoader(peopleReader.load, dataloader.WithWait[int, *models.People](time.Millisecond)),
		ActivityLoader:  dataloader.NewBatchedLoader(activityReader.load, dataloader.WithWait[int, *models.Activity](time.Millisecond)),
		GrantLineLoader: dataloader.NewBatchedLoader(grantLineReader.load, dataloader.WithWait[int, *models.GrantLine](time.Millisecond)),
	}
}

func LoaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := NewLoaders(config.GetDB())
		ctx := context.WithValue(c.Request.Context(), loadersKey, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// WithLoaders attaches fresh loaders to ctx, for callers outside a gin request.
func WithLoaders(ctx context.Context, conn *gorm.DB) context.Context {
	return context.WithValue(ctx, loadersKey, NewLoaders(conn))
}

func For(ctx context.Context) *Loaders {
	return ctx.Value(loadersKey).(*Loaders)
}

type modelReader[K comparable, T models.Data[K]] struct {
	db *gorm.DB
}

func (r *modelReader[K, T]) load(ctx context.Context, ids []K) []*dataloader.Result[*T] {
	var results []T
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&results).Error
	if err != nil {
		return handleError[*T](len(ids), err)
	}
	return generateLoaderResults(results, ids)
}

// handleError creates array of result with the same error repeated for as many items requested
func handleError[T any](itemsLength int, err error) []*dataloader.Result[T] {
	result := make([]*dataloader.Result[T], itemsLength)
	for i := 0; i < itemsLength; i++ {
		result[i] = &dataloader.Result[T]{Error: err}
	}
	return result
}

// turns results from db into dataloader results, in the order of ids.
// ids with no row get the type's default value.
func generateLoaderResults[K comparable, T models.Data[K]](results []T, ids []K) []*dataloader.Result[*T] {
	resultMap := make(map[K]T, len(results))
	for _, result := range results {
		resultMap[result.GetId()] = result
	}

	loaderResults := make([]*dataloader.Result[*T], 0, len(ids))
	for _, id := range ids {
		data, ok := resultMap[id]
		if !ok {
			data = data.GetDefault(id).(T)
		}
		loaderResults = append(loaderResults, &dataloader.Result[*T]{Data: &data})
	}
	return loaderResults
}
