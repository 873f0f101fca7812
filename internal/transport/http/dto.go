package httptransport

type LoginData struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type DuplicateRequest struct {
	Title string `json:"title,omitempty"`
}

type ReorderRequest struct {
	QuestionIDs []string `json:"question_ids" validate:"required,min=1"`
}

type NameRequest struct {
	Name string `json:"name" validate:"required"`
}

type NextQuestionRequest struct {
	QuestionID string `json:"question_id" validate:"required"`
	Value      any    `json:"value"`
}

type NextQuestionResponse struct {
	// Done is true when the flow reached the end; NextQuestionID is empty
	// in that case.
	Done           bool   `json:"done"`
	NextQuestionID string `json:"next_question_id,omitempty"`
	NextIndex      int    `json:"next_index"`
}
