package gcal

import (
	"errors"

	"google.golang.org/api/googleapi"
)

// IsNotFound событие уже не существует (удалено или протухший id).
// Для delete и update это не ошибка, а уже достигнутое состояние.
func IsNotFound(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == 404 || gerr.Code == 410
	}
	return false
}

// IsRateLimited превышена квота запросов, операцию можно повторить позже
func IsRateLimited(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	if gerr.Code == 429 {
		return true
	}
	if gerr.Code == 403 {
		for _, e := range gerr.Errors {
			if e.Reason == "rateLimitExceeded" || e.Reason == "userRateLimitExceeded" {
				return true
			}
		}
	}
	return false
}
