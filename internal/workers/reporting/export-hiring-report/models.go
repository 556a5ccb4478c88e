package exporthiringreport

type Input struct {
	OutputPath string `json:"outputPath,omitempty"`
}

type Output struct {
	Path     string `json:"path"`
	JobCount int    `json:"jobCount"`
}
