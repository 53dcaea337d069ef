package tracker

import "time"

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// Now returns the current time in the core's location.
func (c *Core) Now() time.Time {
	return c.now().In(c.location)
}

// Location returns the location calendar days are computed in.
func (c *Core) Location() *time.Location {
	return c.location
}

func (c *Core) todayISO() string {
	return c.Now().Format(dateLayout)
}

func (c *Core) nowRFC3339() string {
	return c.Now().Format(time.RFC3339)
}
