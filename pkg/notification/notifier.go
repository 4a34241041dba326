package notification

// NotificationSystem represents a delivery channel (e.g., email, SMS).
type NotificationSystem string

// NoticeType represents a kind of notification (e.g., "email_verification").
type NoticeType string

const (
	EmailSystem NotificationSystem = "email"
	SMSSystem   NotificationSystem = "sms"
)

const (
	EmailVerificationNotice  NoticeType = "email_verification"
	MobileVerificationNotice NoticeType = "mobile_verification"
	PasswordResetNotice      NoticeType = "password_reset"
	UsernameRecoveryNotice   NoticeType = "username_recovery"

	ExampleNotice NoticeType = "example"
)

// NotificationData carries the recipient and template parameters for one send.
type NotificationData struct {
	To      string            // Recipient identifier (email address or phone number)
	Subject string            // Optional subject override
	Body    string            // Optional pre-rendered body
	Data    map[string]string // Template parameters
}

// NoticeTemplate holds the renderable parts of a notification.
type NoticeTemplate struct {
	Subject string
	Text    string
	Html    string
}

type Notifier interface {
	Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error
}
