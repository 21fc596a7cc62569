package mdadapter

import (
	"fmt"

	"github.com/jgivc/causelist/internal/entity"
)

type courtResolver struct {
	courts []entity.CourtComplex
}

func newCourtResolver(courts []entity.CourtComplex) *courtResolver {
	return &courtResolver{courts: courts}
}

func (r *courtResolver) GetCourt(slug string) (entity.CourtComplex, error) {
	for _, c := range r.courts {
		if c.Slug == slug {
			return c, nil
		}
	}

	return entity.CourtComplex{}, fmt.Errorf("cannot find court: %s", slug)
}

func (r *courtResolver) GetCourts() []entity.CourtComplex {
	return r.courts
}
