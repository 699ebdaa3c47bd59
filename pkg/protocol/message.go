package protocol

// Hello is the first frame a viewer receives.
type Hello struct {
	Session string
	Version uint64
}

// Encode encodes the hello payload.
func (h Hello) Encode() []byte {
	e := NewEncoder()
	e.WriteString(h.Session)
	e.WriteUvarint(h.Version)
	return e.Bytes()
}

// DecodeHello decodes a hello payload.
func DecodeHello(payload []byte) (Hello, error) {
	var h Hello
	d := NewDecoder(payload)
	var err error
	if h.Session, err = d.ReadString(); err != nil {
		return h, err
	}
	if h.Version, err = d.ReadUvarint(); err != nil {
		return h, err
	}
	return h, d.Finish()
}

// Event asks the server to dispatch an event on a node.
type Event struct {
	Node    int
	Name    string // "click", not "onClick"
	Payload string
}

// Encode encodes the event payload.
func (ev Event) Encode() []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Name)
	e.WriteString(ev.Payload)
	return e.Bytes()
}

// DecodeEvent decodes an event payload.
func DecodeEvent(payload []byte) (Event, error) {
	var ev Event
	d := NewDecoder(payload)
	var err error
	if ev.Node, err = d.ReadInt(); err != nil {
		return ev, err
	}
	if ev.Name, err = d.ReadString(); err != nil {
		return ev, err
	}
	if ev.Payload, err = d.ReadString(); err != nil {
		return ev, err
	}
	return ev, d.Finish()
}

// ErrorMessage is sent when an error occurs. Code is a registered error code
// such as "P001".
type ErrorMessage struct {
	Code    string
	Message string
	Fatal   bool // If true, the connection will be closed
}

// Encode encodes the error payload.
func (em ErrorMessage) Encode() []byte {
	e := NewEncoder()
	e.WriteString(em.Code)
	e.WriteString(em.Message)
	e.WriteBool(em.Fatal)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error payload.
func DecodeErrorMessage(payload []byte) (ErrorMessage, error) {
	var em ErrorMessage
	d := NewDecoder(payload)
	var err error
	if em.Code, err = d.ReadString(); err != nil {
		return em, err
	}
	if em.Message, err = d.ReadString(); err != nil {
		return em, err
	}
	if em.Fatal, err = d.ReadBool(); err != nil {
		return em, err
	}
	return em, d.Finish()
}
