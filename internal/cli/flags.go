package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ericfisherdev/simplekeystore/internal/domain/model"
)

// filterFlags binds the record filter flags shared by list, delete and next.
type filterFlags struct {
	name       string
	active     bool
	expiration int64
	batch      string
	source     string
	login      string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "Match records with this name")
	fs.BoolVar(&f.active, "active", false, "Match active (--active) or inactive (--active=false) records")
	fs.Int64Var(&f.expiration, "expiration", 0, "Match records expiring at exactly these epoch seconds")
	fs.StringVar(&f.batch, "batch", "", "Match records in this batch")
	fs.StringVar(&f.source, "source", "", "Match records with this source")
	fs.StringVar(&f.login, "login", "", "Match records with this login")
}

// filter builds a KeyFilter from the flags the user actually set.
func (f *filterFlags) filter(fs *pflag.FlagSet) model.KeyFilter {
	var filter model.KeyFilter
	if fs.Changed("name") {
		filter.Name = model.Ptr(f.name)
	}
	if fs.Changed("active") {
		filter.Active = model.Ptr(f.active)
	}
	if fs.Changed("expiration") {
		filter.ExpirationEpochSeconds = model.Ptr(f.expiration)
	}
	if fs.Changed("batch") {
		filter.Batch = model.Ptr(f.batch)
	}
	if fs.Changed("source") {
		filter.Source = model.Ptr(f.source)
	}
	if fs.Changed("login") {
		filter.Login = model.Ptr(f.login)
	}
	return filter
}

// fieldFlags binds the record metadata flags shared by add and update.
type fieldFlags struct {
	name    string
	expires string
	batch   string
	source  string
	login   string
	active  bool
}

func (f *fieldFlags) register(fs *pflag.FlagSet, activeDefault bool) {
	fs.StringVar(&f.name, "name", "", "Record name")
	fs.StringVar(&f.expires, "expires", "", "Expiration as days from now or YYYY-MM-DD; empty for none")
	fs.StringVar(&f.batch, "batch", "", "Batch tag")
	fs.StringVar(&f.source, "source", "", "Where the key came from")
	fs.StringVar(&f.login, "login", "", "Login the key belongs to")
	fs.BoolVar(&f.active, "active", activeDefault, "Whether the key may be used")
}

// fields builds a partial update from the flags the user actually set.
func (f *fieldFlags) fields(fs *pflag.FlagSet, now time.Time) (model.KeyFields, error) {
	var fields model.KeyFields
	if fs.Changed("name") {
		fields.Name = model.Ptr(f.name)
	}
	if fs.Changed("expires") {
		sse, err := ParseExpiration(f.expires, now)
		if err != nil {
			return model.KeyFields{}, err
		}
		fields.ExpirationEpochSeconds = sse
		fields.ClearExpiration = sse == nil
	}
	if fs.Changed("active") {
		fields.Active = model.Ptr(f.active)
	}
	if fs.Changed("batch") {
		fields.Batch = model.Ptr(f.batch)
	}
	if fs.Changed("source") {
		fields.Source = model.Ptr(f.source)
	}
	if fs.Changed("login") {
		fields.Login = model.Ptr(f.login)
	}
	return fields, nil
}

// readSecret returns value if set, otherwise the first line of in.
func readSecret(value string, in io.Reader, what string) (string, error) {
	if value != "" {
		return value, nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read %s from stdin: %w", what, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", usageErrorf("%s is required: pass --key or pipe it on stdin", what)
	}
	return line, nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErrorf("invalid record id %q", raw)
	}
	return id, nil
}
