//go:build softhsm

// Package hsm implements a PKCS#11-backed credential encoder. The digest key
// never leaves the HSM; the host only sees the MAC output. Enabled with the
// softhsm build tag so default builds do not require a pkcs11 module.
package hsm

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"github.com/miekg/pkcs11"

	"github.com/roberto5g/mini-authorizer/internal/secure"
)

// Encoder computes credential digests with a 3DES MAC inside the HSM.
// Digests are deterministic, so Matches recomputes and compares.
type Encoder struct {
	libPath  string
	slotID   uint
	pin      string
	keyLabel string
	p11      *pkcs11.Ctx
	sess     pkcs11.SessionHandle
	key      pkcs11.ObjectHandle
}

func NewEncoder(libPath string, slotID uint, pin, keyLabel string) *Encoder {
	return &Encoder{libPath: libPath, slotID: slotID, pin: pin, keyLabel: keyLabel}
}

func (e *Encoder) Open() error {
	e.p11 = pkcs11.New(e.libPath)
	if e.p11 == nil {
		return fmt.Errorf("load pkcs11 lib failed")
	}
	if err := e.p11.Initialize(); err != nil {
		return err
	}
	sess, err := e.p11.OpenSession(pkcs11.SlotID(e.slotID), pkcs11.CKF_SERIAL_SESSION|pkcs11.CKF_RW_SESSION)
	if err != nil {
		_ = e.p11.Finalize()
		return err
	}
	e.sess = sess
	if err := e.p11.Login(e.sess, pkcs11.CKU_USER, e.pin); err != nil {
		_ = e.p11.CloseSession(e.sess)
		_ = e.p11.Finalize()
		return err
	}

	template := []*pkcs11.Attribute{
		pkcs11.NewAttribute(pkcs11.CKA_LABEL, e.keyLabel),
		pkcs11.NewAttribute(pkcs11.CKA_CLASS, pkcs11.CKO_SECRET_KEY),
		pkcs11.NewAttribute(pkcs11.CKA_KEY_TYPE, pkcs11.CKK_DES3),
	}
	if err := e.p11.FindObjectsInit(e.sess, template); err != nil {
		return err
	}
	objs, _, err := e.p11.FindObjects(e.sess, 1)
	_ = e.p11.FindObjectsFinal(e.sess)
	if err != nil {
		return err
	}
	if len(objs) == 0 {
		return fmt.Errorf("digest key not found by label=%s", e.keyLabel)
	}
	e.key = objs[0]
	return nil
}

func (e *Encoder) Close() {
	if e.p11 != nil {
		if e.sess != 0 {
			_ = e.p11.Logout(e.sess)
			_ = e.p11.CloseSession(e.sess)
		}
		_ = e.p11.Finalize()
		e.p11.Destroy()
		e.p11 = nil
	}
}

func (e *Encoder) mac(data []byte) ([]byte, error) {
	mech := []*pkcs11.Mechanism{pkcs11.NewMechanism(pkcs11.CKM_DES3_MAC, nil)}
	if err := e.p11.SignInit(e.sess, mech, e.key); err != nil {
		return nil, err
	}
	return e.p11.Sign(e.sess, data)
}

func (e *Encoder) Hash(plain string) (string, error) {
	mac, err := e.mac([]byte(plain))
	if err != nil {
		return "", fmt.Errorf("hsm mac: %w", err)
	}
	return hex.EncodeToString(mac), nil
}

func (e *Encoder) Matches(plain, encoded string) bool {
	mac, err := e.mac([]byte(plain))
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(mac)), []byte(encoded)) == 1
}

var _ secure.Encoder = (*Encoder)(nil)
