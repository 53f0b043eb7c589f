package model

// PartRecord is one row of a part list.
type PartRecord struct {
	Identifier  string `json:"identifier"`  // номер детали (Part Number)
	Description string `json:"description"` // описание (Part Description)
}

// PartDataset keeps rows in file order; order decides ties.
type PartDataset []PartRecord

type MatchResult struct {
	OriginalDescription string  `json:"originalDescription"`
	OriginalIdentifier  string  `json:"originalIdentifier"`
	MatchedDescription  string  `json:"matchedDescription"`
	MatchedIdentifier   string  `json:"matchedIdentifier"`
	Score               float64 `json:"score"`
}

// Key is the row identity used when collapsing duplicate results.
func (m MatchResult) Key() [4]string {
	return [4]string{m.OriginalDescription, m.OriginalIdentifier, m.MatchedDescription, m.MatchedIdentifier}
}

type ResultSet []MatchResult

type Mapping struct {
	IDKey     string `json:"idKey"`     // колонка с номером детали, варианты через "|"
	DescKey   string `json:"descKey"`   // колонка с описанием
	HeaderRow int    `json:"headerRow"` // строка заголовков (1-based)
}

type Options struct {
	Threshold float64 `json:"threshold"` // минимальная схожесть (0..1)
	Workers   int     `json:"workers"`   // параллельные воркеры по исходному списку
	Prefilter bool    `json:"prefilter"` // отсечение кандидатов по верхней оценке
}

const (
	DefaultThreshold = 0.6
	DefaultIDKey     = "Part Number"
	DefaultDescKey   = "Part Description"

	// заголовки, которые принимаются без явного маппинга
	DefaultIDKeys   = DefaultIDKey + "|Part No|PartNumber|Item Number"
	DefaultDescKeys = DefaultDescKey + "|Description|PartDescription|Item Description"
)

func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, Workers: 1, Prefilter: true}
}

func DefaultMapping() Mapping {
	return Mapping{IDKey: DefaultIDKeys, DescKey: DefaultDescKeys, HeaderRow: 1}
}

type Stats struct {
	OriginalRows         int `json:"originalRows"`   // строк после очистки
	ComparisonRows       int `json:"comparisonRows"`
	OriginalDropped      int `json:"originalDropped"` // без номера или описания
	ComparisonDropped    int `json:"comparisonDropped"`
	OriginalDuplicates   int `json:"originalDuplicates"`
	ComparisonDuplicates int `json:"comparisonDuplicates"`
	Compared             int `json:"compared"` // посчитанных пар
	Pruned               int `json:"pruned"`   // пар, отсечённых префильтром
}

type Report struct {
	Results ResultSet `json:"results"`
	Stats   Stats     `json:"stats"`
	Opts    Options   `json:"opts"`
	MapA    Mapping   `json:"mapA"`
	MapB    Mapping   `json:"mapB"`
}
