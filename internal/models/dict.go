package models

import "time"

// DictType groups dictionary entries under a stable type code.
type DictType struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	Status    int       `db:"status" json:"status"`
	Remark    string    `db:"remark" json:"remark"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DictData is a single labelled value belonging to a dictionary type.
type DictData struct {
	ID        int64     `db:"id" json:"id"`
	TypeCode  string    `db:"type_code" json:"type_code"`
	Label     string    `db:"label" json:"label"`
	Value     string    `db:"value" json:"value"`
	Sort      int       `db:"sort" json:"sort"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DictTypeFilter captures criteria for listing dictionary types.
type DictTypeFilter struct {
	Search   string
	Status   *int
	Page     int
	PageSize int
}
