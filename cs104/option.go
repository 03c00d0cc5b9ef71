// Copyright 2025 Ricardo L. Olsen. All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package cs104

import "github.com/lyxer123/myIEC60870-5-104/asdu"

// ClientOption collects construction-time overrides, mirroring
// cs101.ClientOption/NewOption()'s chainable-setter shape. SetSerialConfig
// has no analogue here: 104's transport is an injected Transport, never a
// concrete serial port.
type ClientOption struct {
	config *Config
	params *asdu.Params
}

// NewOption returns a ClientOption pre-populated with the standard defaults.
func NewOption() *ClientOption {
	return &ClientOption{
		config: DefaultConfig(),
		params: asdu.ParamsStandard104,
	}
}

// SetConfig overrides the timer/window/address configuration.
func (o *ClientOption) SetConfig(c *Config) *ClientOption {
	o.config = c
	return o
}

// SetParams overrides the ASDU address-field widths.
func (o *ClientOption) SetParams(p *asdu.Params) *ClientOption {
	o.params = p
	return o
}
