// Package domain holds the indicator kinds, readings and the dashboard series built from them.
package domain

import (
	"errors"
	"strings"
)

// Kind identifies a macroeconomic indicator.
type Kind string

const (
	KindIPCA             Kind = "ipca"
	KindSelic            Kind = "selic"
	KindIGPM             Kind = "igpm"
	KindPIB              Kind = "pib"
	KindDolar            Kind = "dolar"
	KindBalancaComercial Kind = "balanca_comercial"
	KindDesemprego       Kind = "desemprego"
)

// ErrUnknownKind is returned by ParseKind for anything outside the closed set.
var ErrUnknownKind = errors.New("unknown indicator")

// Meta is the display metadata of a kind.
type Meta struct {
	Kind      Kind
	Name      string
	ShortName string
	Unit      string
}

// AllKinds is the canonical order of the indicators.
var AllKinds = []Kind{KindIPCA, KindSelic, KindIGPM, KindPIB, KindDolar, KindBalancaComercial, KindDesemprego}

var metas = map[Kind]Meta{
	KindIPCA:             {Kind: KindIPCA, Name: "Inflação (IPCA)", ShortName: "IPCA", Unit: "% a.a."},
	KindSelic:            {Kind: KindSelic, Name: "Taxa Selic", ShortName: "Selic", Unit: "% a.a."},
	KindIGPM:             {Kind: KindIGPM, Name: "IGP-M", ShortName: "IGP-M", Unit: "% a.a."},
	KindPIB:              {Kind: KindPIB, Name: "PIB", ShortName: "PIB", Unit: "% a.a."},
	KindDolar:            {Kind: KindDolar, Name: "Dólar (USD/BRL)", ShortName: "Dólar", Unit: "R$"},
	KindBalancaComercial: {Kind: KindBalancaComercial, Name: "Balança Comercial", ShortName: "Balança", Unit: "US$ bi"},
	KindDesemprego:       {Kind: KindDesemprego, Name: "Taxa de Desemprego", ShortName: "Desemprego", Unit: "%"},
}

// ParseKind normalizes s and returns the matching kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := metas[k]; !ok {
		return "", ErrUnknownKind
	}
	return k, nil
}

// Known reports whether k is one of AllKinds.
func (k Kind) Known() bool {
	_, ok := metas[k]
	return ok
}

// MetaFor returns the metadata of k. Unknown kinds get Name and ShortName equal to the kind and an
// empty unit.
func MetaFor(k Kind) Meta {
	if m, ok := metas[k]; ok {
		return m
	}
	return Meta{Kind: k, Name: string(k), ShortName: string(k)}
}

// KindStrings returns AllKinds as strings.
func KindStrings() []string {
	out := make([]string, len(AllKinds))
	for i, k := range AllKinds {
		out[i] = string(k)
	}
	return out
}
