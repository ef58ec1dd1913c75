// Package power answers one question: is the machine on AC power.
package power

// Source reports the current power source. ACOnline returns true on AC
// power and false on battery.
type Source interface {
	ACOnline() (bool, error)
}

// DefaultSource returns the platform power-source reader. On platforms
// without a supported query it reports AC, which keeps profile switching
// inert rather than wrong.
func DefaultSource() Source {
	return platformSource()
}
