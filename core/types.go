package core

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// StringList is a list of strings that also accepts a comma-separated JSON string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = CleanList(items)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("must be a list or a comma-separated string")
	}
	*l = SplitList(s)
	return nil
}
