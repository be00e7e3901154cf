package models

// AnalysisRequest carries a natural-language question about defect data.
type AnalysisRequest struct {
	Query string `json:"query" validate:"required,max=1000"`
}

// ChartDataset is one series of a suggested chart.
type ChartDataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartSpec describes a chart the analyzer suggests for its answer.
type ChartSpec struct {
	ChartType string         `json:"chart_type"`
	Title     string         `json:"title,omitempty"`
	Labels    []string       `json:"labels"`
	Datasets  []ChartDataset `json:"datasets"`
}

// AnalysisResponse is returned by POST /analyze. Tips and VisualizationData
// are never null on the wire.
type AnalysisResponse struct {
	Summary           string      `json:"summary"`
	Tips              []string    `json:"tips"`
	VisualizationData []ChartSpec `json:"visualization_data"`
}

// DefectDigest is the consolidated view of recent checklists handed to the
// analyzer instead of raw documents.
type DefectDigest struct {
	PeriodDays       int            `json:"period_days"`
	TotalDocuments   int            `json:"total_documents"`
	PendingDocuments int            `json:"pending_documents"`
	TotalBoards      int            `json:"total_boards"`
	ByDefect         map[string]int `json:"by_defect"`
	BySector         map[string]int `json:"by_sector"`
	ByProduct        map[string]int `json:"by_product"`
	BoardSides       map[string]int `json:"board_sides"`
}

// Fill replaces nil slices with empty ones.
func (r *AnalysisResponse) Fill() {
	if r.Tips == nil {
		r.Tips = []string{}
	}
	if r.VisualizationData == nil {
		r.VisualizationData = []ChartSpec{}
	}
	for i := range r.VisualizationData {
		if r.VisualizationData[i].Labels == nil {
			r.VisualizationData[i].Labels = []string{}
		}
		if r.VisualizationData[i].Datasets == nil {
			r.VisualizationData[i].Datasets = []ChartDataset{}
		}
	}
}
