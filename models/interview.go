package models

// InterviewToken, görüntülü mülakat odasına bağlanmak için gereken bilgiler.
// Client token ile LiveKit server'a bağlanır — room adı konuşma ID'sidir.
type InterviewToken struct {
	Token          string `json:"token"`
	URL            string `json:"url"`
	ConversationID string `json:"conversation_id"`
}
