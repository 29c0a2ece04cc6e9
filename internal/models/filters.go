package models

// VisitFilter represents filter parameters for querying visits
type VisitFilter struct {
	UserID   string `form:"-"`
	Open     *bool  `form:"open"`
	PlaceID  int64  `form:"placeId"`
	From     int64  `form:"from"` // Unix milliseconds, arrived at or after
	To       int64  `form:"to"`   // Unix milliseconds, arrived before
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// Normalize applies the default and maximum page sizes
func (f *VisitFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = 100
	}
	if f.PageSize > 1000 {
		f.PageSize = 1000
	}
}
