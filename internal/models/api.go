package models

type AnalyzeFoodRequest struct {
	Image string `json:"image" binding:"required"`
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

type RecommendationStatusResponse struct {
	State string `json:"state"`
	Error string `json:"error,omitempty"`
}

type AssistantMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content"`
}

type AssistantRequest struct {
	Messages []AssistantMessage `json:"messages" binding:"required,min=1,dive"`
}

type AssistantResponse struct {
	Response string `json:"response"`
}

type CheckInRequest struct {
	Date      string    `json:"date" binding:"required"`
	Breakfast MealEntry `json:"breakfast"`
	Lunch     MealEntry `json:"lunch"`
	Dinner    MealEntry `json:"dinner"`
	Symptoms  []string  `json:"symptoms"`
	Progress  int       `json:"progress" binding:"min=0,max=10"`
}

type ProfileRequest struct {
	FirstName string       `json:"firstName"`
	LastName  string       `json:"lastName"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	Address   string       `json:"address"`
	Flags     ProfileFlags `json:"flags"`
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Service   string            `json:"service"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
