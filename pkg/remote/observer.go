package remote

// Observer receives viewer lifecycle and traffic events.
type Observer interface {
	ViewerConnected()
	ViewerDisconnected(dropped bool)
	FrameSent(bytes int)
}

type nopObserver struct{}

func (nopObserver) ViewerConnected()        {}
func (nopObserver) ViewerDisconnected(bool) {}
func (nopObserver) FrameSent(int)           {}
