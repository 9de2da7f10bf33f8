package sensor

// FloodToken is the payload a flood sensor publishes while it detects water.
const FloodToken = "true"

// Flood fires on every payload equal to FloodToken. It is stateless: repeated
// alarms each fire again.
type Flood struct{}

// NewFlood returns a flood policy.
func NewFlood() *Flood {
	return &Flood{}
}

// Kind implements Policy.
func (*Flood) Kind() Kind {
	return KindFlood
}

// Evaluate implements Policy.
func (*Flood) Evaluate(payload string) (bool, error) {
	return payload == FloodToken, nil
}
