package device

import "testing"

func TestStatusOk(t *testing.T) {
	if !StatusOk.Ok() {
		t.Fatal("StatusOk.Ok() = false")
	}
	if StatusBusy.Ok() {
		t.Fatal("StatusBusy.Ok() = true")
	}
}

func TestStatusStringKnownValues(t *testing.T) {
	cases := map[Status]string{
		StatusOk:                   "Ok",
		StatusBusy:                 "Busy",
		StatusWrongPassword:        "Wrong_Password",
		StatusUserNotAuthenticated: "User_Not_Authenticated",
	}
	for status, want := range cases {
		if got := status.String(); got != want {
			t.Errorf("Status(%d).String() = %q, want %q", status, got, want)
		}
	}
}

func TestModelSupportsCommand(t *testing.T) {
	storageOnly := &CommandDescriptor{StorageOnly: true}
	universal := &CommandDescriptor{}

	if ModelPro.supportsCommand(storageOnly) {
		t.Fatal("Pro should not support a Storage-only command")
	}
	if !ModelStorage.supportsCommand(storageOnly) {
		t.Fatal("Storage should support a Storage-only command")
	}
	if !ModelPro.supportsCommand(universal) {
		t.Fatal("Pro should support a universal command")
	}
}
