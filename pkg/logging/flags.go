package logging

import "flag"

func flagSet(name, value string) error {
	if flag.Lookup(name) == nil {
		return nil
	}
	return flag.Set(name, value)
}
