package database

// Lval строка таблицы настроек LVAL
type Lval struct {
	TipoLval string `gorm:"column:TIPOLVAL;primaryKey;size:8"`
	CodLval  string `gorm:"column:CODLVAL;primaryKey;size:100"`
	Descrip  string `gorm:"column:DESCRIP;size:150;index"`
	DescLong string `gorm:"column:DESCLONG;size:2000"`
	StsLval  string `gorm:"column:STSLVAL;size:3"`
}

// TableName имя таблицы
func (Lval) TableName() string {
	return "LVAL"
}
