//go:build !windows
// +build !windows

package service

import "errors"

var errNotSupported = errors.New("service management is only available on Windows")

// RunService runs the app in the foreground on non-Windows platforms
func RunService(isDebug bool, app *Application) error {
	return app.Run()
}

func InstallService(exePath string) error {
	return errNotSupported
}

func UninstallService() error {
	return errNotSupported
}

func StartService() error {
	return errNotSupported
}

func StopService() error {
	return errNotSupported
}

// IsWindowsService always returns false on non-Windows platforms
func IsWindowsService() (bool, error) {
	return false, nil
}
