package typeid

import (
	"strings"
	"testing"
)

func TestNewAndCheck(t *testing.T) {
	for _, k := range []Kind{Client, Controller, Export} {
		t.Run(string(k), func(t *testing.T) {
			id := k.New()
			if !strings.HasPrefix(id, string(k)+"_") {
				t.Errorf("id %q lacks prefix %q", id, k)
			}
			if err := k.Check(id); err != nil {
				t.Errorf("Check: %v", err)
			}
			if got, err := KindOf(id); err != nil || got != k {
				t.Errorf("KindOf = %q, %v", got, err)
			}
		})
	}
}

func TestCheckRejects(t *testing.T) {
	if err := Controller.Check(Client.New()); err == nil {
		t.Error("client id accepted as controller id")
	}
	if err := Client.Check("not an id"); err == nil {
		t.Error("garbage accepted")
	}
	if Client.New() == Client.New() {
		t.Error("ids repeat")
	}
}
