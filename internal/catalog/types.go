package catalog

// Topic is one partition of the question bank with its own payload.
type Topic struct {
	ID           string `yaml:"id" json:"id"`
	Category     string `yaml:"category" json:"category"`
	BinaryChoice bool   `yaml:"binary_choice" json:"binary_choice"`
}

// Chapter groups topics for display.
type Chapter struct {
	ID     string  `yaml:"id" json:"id"`
	Title  string  `yaml:"title" json:"title"`
	Topics []Topic `yaml:"topics" json:"topics"`
}

type document struct {
	Chapters []Chapter `yaml:"chapters"`
}
