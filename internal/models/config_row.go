package models

// ConfigRow is one line of the Asterisk realtime configuration table.
// All rows sharing a category share one cat_metric; var_metric orders the
// variables within a category and drives the line order of the generated
// config file. Neither metric is auto-incremented by the database — the
// service layer allocates both.
type ConfigRow struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	CatMetric int    `gorm:"column:cat_metric;uniqueIndex:idx_cat_var,priority:1;not null" json:"cat_metric"`
	VarMetric int    `gorm:"column:var_metric;uniqueIndex:idx_cat_var,priority:2;not null" json:"var_metric"`
	Filename  string `gorm:"size:128;not null" json:"filename"`
	Category  string `gorm:"size:128;index;not null" json:"category"`
	VarName   string `gorm:"column:var_name;size:128;not null" json:"var_name"`
	VarVal    string `gorm:"column:var_val;size:128;not null" json:"var_val"`
	Commented int    `gorm:"default:0" json:"commented"`
}

func (ConfigRow) TableName() string { return "ast_config" }
