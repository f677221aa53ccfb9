package model

// ================ Config ================
type DialogueConfig struct {
	// StateTTL bounds how long a session's last search is remembered.
	// Zero keeps records forever.
	StateTTL string `envconfig:"STATE_TTL" default:"0s"`
}

type DriverConfig struct {
	State  string `envconfig:"STATE_STORE_DRIVER" default:"redis"`
	Queue  string `envconfig:"QUEUE_DRIVER" default:"redis"`
	Index  string `envconfig:"INDEX_DRIVER" default:"qdrant"`
	Detail string `envconfig:"DETAIL_STORE_DRIVER" default:"postgres"`
}

type QueueConfig struct {
	Name              string `envconfig:"QUEUE_NAME" default:"dining-concierge"`
	VisibilityTimeout string `envconfig:"QUEUE_VISIBILITY_TIMEOUT" default:"30s"`
}

type WorkerConfig struct {
	Concurrency  int    `envconfig:"WORKER_CONCURRENCY" default:"1"`
	PollInterval string `envconfig:"WORKER_POLL_INTERVAL" default:"5s"`
}

type MailConfig struct {
	Driver   string `envconfig:"MAIL_DRIVER" default:"log"`
	Sender   string `envconfig:"MAIL_SENDER" default:"concierge@example.com"`
	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USERNAME"`
	SMTPPass string `envconfig:"SMTP_PASSWORD"`
	// SMTPTimeout bounds dialing and each SMTP command.
	SMTPTimeout string `envconfig:"SMTP_TIMEOUT" default:"15s"`
}

type SupabaseConfig struct {
	URL    string `envconfig:"SUPABASE_URL"`
	APIKey string `envconfig:"SUPABASE_API_KEY"`
	Table  string `envconfig:"SUPABASE_RESTAURANT_TABLE" default:"restaurants"`
}
