package handlers

import (
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/parishrama/diagnostic-api/internal/apperr"
	"github.com/parishrama/diagnostic-api/internal/store"
)

var (
	newestFirst     = bson.D{{Key: "createdAt", Value: -1}}
	oldestFirst     = bson.D{{Key: "createdAt", Value: 1}}
	recentlyUpdated = bson.D{{Key: "updatedAt", Value: -1}}
)

// resource carries the operations every resource shares.
type resource[T any] struct {
	name   string // "Doctor", "Home item"...
	repo   store.Repository[T]
	sort   bson.D
	search []string
}

func newResource[T any](name string, repo store.Repository[T], sort bson.D, search ...string) *resource[T] {
	return &resource[T]{name: name, repo: repo, sort: sort, search: search}
}

// named gives a missing record the resource's name.
func (r *resource[T]) named(err error) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.New(apperr.KindNotFound, r.name+" not found")
	}
	return err
}

func (r *resource[T]) find(c *gin.Context, id primitive.ObjectID) (*T, error) {
	rec, err := r.repo.FindByID(c.Request.Context(), id)
	return rec, r.named(err)
}

// list writes one page of the records matching filter.
func (r *resource[T]) list(h *Handler, c *gin.Context, filter bson.M) {
	ctx := c.Request.Context()
	page, limit := pageParams(c)

	total, err := r.repo.Count(ctx, filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := r.repo.Find(ctx, filter, store.FindOptions{
		Sort:  r.sort,
		Skip:  int64((page - 1) * limit),
		Limit: int64(limit),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	listed(c, records, len(records), &total, newPagination(page, limit, total))
}

func (r *resource[T]) get(h *Handler, c *gin.Context) {
	id, err := parseID(c, r.name)
	if err != nil {
		h.fail(c, err)
		return
	}
	rec, err := r.find(c, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	ok(c, http.StatusOK, "", rec)
}

// remove hard-deletes a record and answers with it.
func (r *resource[T]) remove(h *Handler, c *gin.Context) {
	id, err := parseID(c, r.name)
	if err != nil {
		h.fail(c, err)
		return
	}
	rec, err := r.repo.DeleteByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, r.named(err))
		return
	}
	ok(c, http.StatusOK, r.name+" deleted successfully", rec)
}

// searchFilter matches query, taken literally, in any search field.
func (r *resource[T]) searchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	clauses := make([]bson.M, 0, len(r.search))
	for _, field := range r.search {
		clauses = append(clauses, bson.M{field: pattern})
	}
	return bson.M{"$or": clauses}
}

// searchBy answers with every match, newest first, without paging.
func (r *resource[T]) searchBy(h *Handler, c *gin.Context, query string, extra bson.M) {
	filter := r.searchFilter(query)
	for k, v := range extra {
		filter[k] = v
	}
	records, err := r.repo.Find(c.Request.Context(), filter, store.FindOptions{Sort: newestFirst})
	if err != nil {
		h.fail(c, err)
		return
	}
	listed(c, records, len(records), nil, nil)
}

func (r *resource[T]) active(h *Handler, c *gin.Context) {
	records, err := r.repo.Find(c.Request.Context(), bson.M{"isActive": true}, store.FindOptions{Sort: newestFirst})
	if err != nil {
		h.fail(c, err)
		return
	}
	listed(c, records, len(records), nil, nil)
}

// activeCounts is the total/active/inactive breakdown shared by several
// stats endpoints.
func (r *resource[T]) activeCounts(c *gin.Context) (gin.H, error) {
	ctx := c.Request.Context()
	total, err := r.repo.Count(ctx, nil)
	if err != nil {
		return nil, err
	}
	active, err := r.repo.Count(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	return gin.H{"total": total, "active": active, "inactive": total - active}, nil
}
