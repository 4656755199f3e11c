package model

// SessionEventRequest はセッションへのイベント送信リクエストDTO
type SessionEventRequest struct {
	Type  string `json:"type" validate:"required,oneof=select_mode select_file select_direction select_quiz_type start_quiz next_question submit_answer back"`
	Value string `json:"value" validate:"max=500"`
}
