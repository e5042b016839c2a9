package clarifai

// Request models
type PredictRequest struct {
	Inputs []Input `json:"inputs"`
}

type Input struct {
	Data InputData `json:"data"`
}

type InputData struct {
	Image Image `json:"image"`
}

type Image struct {
	Base64 string `json:"base64"`
}

// Response models
type PredictResponse struct {
	Status  Status   `json:"status"`
	Outputs []Output `json:"outputs"`
}

type Status struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
}

// Data and Concepts are pointers so a missing or null field can be told
// apart from an empty concept list.
type Output struct {
	Data *OutputData `json:"data"`
}

type OutputData struct {
	Concepts *[]Concept `json:"concepts"`
}

type Concept struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}
