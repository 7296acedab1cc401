package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clinic-kit/medapp/internal/domain"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Ada Lovelace":        "ada-lovelace",
		"  Grace   Hopper  ":  "grace-hopper",
		"Zoë O'Brien":         "zoe-obrien",
		"José-María  Núñez":   "jose-maria-nunez",
		"Dr. Who -- the 2nd":  "dr-who-the-2nd",
		"snake_case name":     "snake_case-name",
		"__leading-trailing_": "leading-trailing",
		"!!!":                 "",
		"李明":                  "",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "Slugify(%q)", in)
	}
}

func TestBaseUsername(t *testing.T) {
	assert.Equal(t, "ada-lovelace", BaseUsername(&domain.StaffMember{ID: 3, Name: "Ada Lovelace"}))
	assert.Equal(t, "user_7", BaseUsername(&domain.StaffMember{ID: 7, Name: "???"}))
}
