// SPDX-FileCopyrightText: 2022 Free Mobile
// SPDX-License-Identifier: AGPL-3.0-only

package daemon

import (
	"errors"
	"testing"
	"time"

	"gopkg.in/tomb.v2"

	"asbottleneck/common/reporter"
)

func TestTerminateOnTombDeath(t *testing.T) {
	r := reporter.NewMock(t)
	c, err := New(r)
	if err != nil {
		t.Fatalf("New() error:\n%+v", err)
	}

	var tmb tomb.Tomb
	tmb.Go(func() error {
		<-tmb.Dying()
		return errors.New("going down")
	})
	c.Track(&tmb, "test")

	if err := c.Start(); err != nil {
		t.Fatalf("Start() error:\n%+v", err)
	}
	select {
	case <-c.Terminated():
		t.Fatal("daemon terminated too early")
	case <-time.After(20 * time.Millisecond):
	}

	tmb.Kill(nil)
	select {
	case <-c.Terminated():
	case <-time.After(time.Second):
		t.Fatal("daemon not terminated after tomb death")
	}
	if err := c.Stop(); err != nil {
		t.Fatalf("Stop() error:\n%+v", err)
	}
}
