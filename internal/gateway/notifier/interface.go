package notifier

// TextNotifier defines a minimal text notification interface.
type TextNotifier interface {
	SendText(text string) error
}

// Nop discards every message.
type Nop struct{}

func (Nop) SendText(string) error { return nil }
