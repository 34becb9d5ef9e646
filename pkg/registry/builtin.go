package registry

import (
	"github.com/poweradmin/go-recordwizard/pkg/wizard/caa"
	"github.com/poweradmin/go-recordwizard/pkg/wizard/dkim"
	"github.com/poweradmin/go-recordwizard/pkg/wizard/dmarc"
	"github.com/poweradmin/go-recordwizard/pkg/wizard/spf"
	"github.com/poweradmin/go-recordwizard/pkg/wizard/srv"
	"github.com/poweradmin/go-recordwizard/pkg/wizard/tlsa"
)

// Builtins returns a fresh map of the wizards shipped with this module.
func Builtins() map[string]Factory {
	return map[string]Factory{
		dmarc.Type: dmarc.Factory,
		spf.Type:   spf.Factory,
		dkim.Type:  dkim.Factory,
		caa.Type:   caa.Factory,
		tlsa.Type:  tlsa.Factory,
		srv.Type:   srv.Factory,
	}
}
