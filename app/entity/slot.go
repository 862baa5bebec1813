package entity

type Slot struct {
	ID     string `yaml:"id"`
	Amount int64  `yaml:"amount"`
	Glyph  string `yaml:"glyph"`
}
