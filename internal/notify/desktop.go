package notify

import "fyne.io/fyne/v2"

// Desktop sends notifications through the OS notification centre.
type Desktop struct {
	App fyne.App
}

func (desktop Desktop) Notify(notification Notification) {
	if desktop.App == nil {
		return
	}
	title := notification.Title
	if title == "" {
		title = "LoopLog"
	}
	desktop.App.SendNotification(fyne.NewNotification(title, notification.Message))
}
