package statestore

import "fmt"

func errTimestampNotFound(ts string) error {
	return fmt.Errorf("command states do not exist for timestamp: %s", ts)
}

func errIndexNotFound(idx int) error {
	return fmt.Errorf("command state does not exist for index: %d", idx)
}
