package profiles

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/mitchellh/go-homedir"

	"github.com/dstackai/dstack/cmd/dstack/config/open"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("config file is not found")
var ErrCannotCreateConfig = errors.New("cannot create config file")
var ErrCannotUpdateConfig = errors.New("cannot update config file")
var ErrProfileInvalid = errors.New("dstack profile is invalid")

// DefaultServer is the server endpoint assumed when a profile does not name one.
const DefaultServer = "http://localhost:8000"

// ProfileStore is a map from profile name to Profile.
type ProfileStore map[string]*Profile

// Profile is a credential set for a dstack server.
type Profile struct {
	// user name on the server
	User string `yaml:"user"`

	// access token of the user
	Token string `yaml:"token"`

	// endpoint of dstack server. When empty, DefaultServer is used.
	Server string `yaml:"server,omitempty"`

	// verify TLS certificates of the server. Missing means true.
	VerifyTLS *bool `yaml:"verify,omitempty"`
}

// configFile is the on-disk layout of ~/.dstack/config.yaml .
type configFile struct {
	Profiles ProfileStore `yaml:"profiles"`
}

// DefaultPath returns the path of the per-user config file, ~/.dstack/config.yaml .
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".dstack", "config.yaml"), nil
}

// ServerURL returns the server endpoint of the profile, falling back to DefaultServer.
func (p *Profile) ServerURL() string {
	if p.Server == "" {
		return DefaultServer
	}
	return p.Server
}

// ShouldVerify reports whether TLS certificates are to be verified.
func (p *Profile) ShouldVerify() bool {
	return p.VerifyTLS == nil || *p.VerifyTLS
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

// Verify Profile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *Profile) Verify() error {
	if p.User == "" {
		return fmt.Errorf("%w: user is not set", ErrProfileInvalid)
	}
	if p.Token == "" {
		return fmt.Errorf("%w: token is not set", ErrProfileInvalid)
	}
	if p.Server != "" && !verifyUrl(p.Server) {
		return fmt.Errorf("%w: server is not URL: %s", ErrProfileInvalid, p.Server)
	}

	return nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	conf := configFile{}
	if err := yaml.Unmarshal(buf, &conf); err != nil {
		return nil, err
	}
	if conf.Profiles == nil {
		conf.Profiles = ProfileStore{}
	}
	return conf.Profiles, nil
}

// Save profile store to file.
func (ps *ProfileStore) Save(path string) error {
	saving := false

	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	bkpath := path + ".backup"
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer func() {
		if !saving {
			os.Remove(bkpath)
		}
	}()
	defer bk.Close()

	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	if err == nil {
		// In case of the existing file with loose permissions,
		// enforce permission to 0600.
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			return err
		}
	} else {
		if os.IsPermission(err) {
			return fmt.Errorf(
				"%w, because no permission to write file at %s",
				ErrCannotUpdateConfig, path,
			)
		} else if os.IsNotExist(err) {
			f_, err_ := open.NewSafeFile(path)
			if err_ != nil {
				return fmt.Errorf(
					"%w: cannot create a file at %s",
					ErrCannotCreateConfig, path,
				)
			}
			f = f_
		} else {
			return err
		}
	}
	defer f.Close()

	if err := bk.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	saving = true
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	buf, err := yaml.Marshal(configFile{Profiles: *ps})
	if err != nil {
		return err
	}
	_, err = f.Write(buf)

	if err == nil {
		saving = false
	}
	return err
}
