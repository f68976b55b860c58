// driver_unwired.go — a driver.Driver implementation that reports "no
// concrete browser driver wired" on every call. See main.go's doc comment:
// the browser driver is an out-of-scope external collaborator per spec §1,
// so this binary links against internal/session.Manager's driver.Driver
// boundary without shipping a CDP client behind it.
package main

import (
	"context"
	"time"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

var unavailableErr = gaserr.New(gaserr.KindDirectUnavailable,
	"no browser driver is wired into this build; the driver is an external capability (spec §1) supplied by the deployment, not this binary")

func (unwiredDriver) LaunchPersistent(ctx context.Context, profileDir string, headless bool, extraFlags []string) (driver.Page, error) {
	return driver.Page{}, unavailableErr
}

func (unwiredDriver) ConnectCDP(ctx context.Context, wsEndpoint string) error {
	return unavailableErr
}

func (unwiredDriver) Pages(ctx context.Context) ([]driver.Page, error) {
	return nil, unavailableErr
}

func (unwiredDriver) NewPage(ctx context.Context) (driver.Page, error) {
	return driver.Page{}, unavailableErr
}

func (unwiredDriver) ClosePage(ctx context.Context, p driver.Page) error {
	return unavailableErr
}

func (unwiredDriver) Title(ctx context.Context, p driver.Page) (string, error) {
	return "", unavailableErr
}

func (unwiredDriver) URL(ctx context.Context, p driver.Page) (string, error) {
	return "", unavailableErr
}

func (unwiredDriver) Navigate(ctx context.Context, p driver.Page, url string) error {
	return unavailableErr
}

func (unwiredDriver) WaitForLoad(ctx context.Context, p driver.Page, timeout time.Duration) error {
	return unavailableErr
}

func (unwiredDriver) Evaluate(ctx context.Context, p driver.Page, backendNodeID int64, script string) (driver.EvaluateResult, error) {
	return driver.EvaluateResult{}, unavailableErr
}

func (unwiredDriver) Screenshot(ctx context.Context, p driver.Page, backendNodeID int64) (driver.Screenshot, error) {
	return driver.Screenshot{}, unavailableErr
}

func (unwiredDriver) SubscribeNetwork(p driver.Page, fn func(driver.NetworkEvent)) func()       { return func() {} }
func (unwiredDriver) SubscribeConsole(p driver.Page, fn func(driver.ConsoleEvent)) func()       { return func() {} }
func (unwiredDriver) SubscribeExceptions(p driver.Page, fn func(driver.ExceptionEvent)) func()  { return func() {} }
func (unwiredDriver) SubscribeFrameNavigated(p driver.Page, fn func(driver.FrameNavigatedEvent)) func() {
	return func() {}
}

func (unwiredDriver) ImportCookies(ctx context.Context, cookies []driver.Cookie) error {
	return unavailableErr
}

func (unwiredDriver) ListCookies(ctx context.Context) ([]driver.Cookie, error) {
	return nil, unavailableErr
}

func (unwiredDriver) Close(ctx context.Context) error {
	return nil
}
