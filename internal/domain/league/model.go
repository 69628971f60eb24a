package league

import "fmt"

// League is a sport's top-level competition namespace.
type League struct {
	Code  string
	Name  string
	Sport string
}

func (l League) Validate() error {
	if l.Code == "" {
		return fmt.Errorf("league code is required")
	}
	if len(l.Code) < 2 || len(l.Code) > 5 {
		return fmt.Errorf("league code must be 2-5 characters: %s", l.Code)
	}
	if l.Name == "" {
		return fmt.Errorf("league name is required")
	}

	return nil
}
