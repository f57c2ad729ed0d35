package tasksdk_test

import (
	"strings"
	"testing"

	"github.com/aussiebroadwan/tasksetu/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

func TestBootstrapRequestValidate(t *testing.T) {
	valid := tasksdk.BootstrapRequest{
		Email:     "root@tasksetu.test",
		Password:  "Abc12345",
		FirstName: "Root",
		LastName:  "Admin",
	}
	require.Nil(t, valid.Validate())

	tests := []struct {
		name  string
		mut   func(*tasksdk.BootstrapRequest)
		field string
	}{
		{"missing email", func(b *tasksdk.BootstrapRequest) { b.Email = "" }, "email"},
		{"bad email", func(b *tasksdk.BootstrapRequest) { b.Email = "not-an-email" }, "email"},
		{"short password", func(b *tasksdk.BootstrapRequest) { b.Password = "Ab1" }, "password"},
		{"no digit", func(b *tasksdk.BootstrapRequest) { b.Password = "abcdefghij" }, "password"},
		{"too long password", func(b *tasksdk.BootstrapRequest) { b.Password = strings.Repeat("a1", 40) }, "password"},
		{"missing first name", func(b *tasksdk.BootstrapRequest) { b.FirstName = " " }, "first_name"},
		{"long last name", func(b *tasksdk.BootstrapRequest) { b.LastName = strings.Repeat("x", 65) }, "last_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mut(&req)
			errs := req.Validate()
			require.Contains(t, errs, tt.field)
			require.Len(t, errs, 1)
		})
	}
}
