package service

// Publisher delivers lifecycle events (new bid, auction ended, user banned) to
// interested users. Implementations are fire-and-forget and must only be
// invoked after the originating commit has succeeded.
type Publisher interface {
	Publish(userID uint, topic string, data map[string]interface{})
}
