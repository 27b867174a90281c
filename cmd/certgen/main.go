// Package main generates the Certificate Authority (CA), server, and client
// certificates used by the mTLS deployment, writing them to files under the
// "certs" directory. Client certificates carry the username as Common Name.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"passvault/internal/certgen"
)

func main() {
	dir := flag.String("dir", "certs", "output directory")
	host := flag.String("host", "localhost", "server certificate hostname")
	user := flag.String("user", "", "also generate a client certificate for this username")
	flag.Parse()

	if err := os.MkdirAll(*dir, 0o755); err != nil {
		log.Fatalf("create output dir: %v", err)
	}

	caCertPath := filepath.Join(*dir, "ca.crt")
	caKeyPath := filepath.Join(*dir, "ca.key")

	// Reuse an existing CA so client certificates issued later verify against
	// the same pool the server was started with.
	ca, err := certgen.LoadCA(caCertPath, caKeyPath)
	if err != nil {
		ca, err = certgen.NewCA("passvault CA")
		if err != nil {
			log.Fatalf("generate CA: %v", err)
		}
		caKeyPEM, err := ca.KeyPEM()
		if err != nil {
			log.Fatalf("encode CA key: %v", err)
		}
		writePair(*dir, "ca", ca.CertPEM(), caKeyPEM)

		serverCert, serverKey, err := ca.ServerCertificate(*host)
		if err != nil {
			log.Fatalf("generate server certificate: %v", err)
		}
		writePair(*dir, "server", serverCert, serverKey)
	}

	if *user != "" {
		clientCert, clientKey, err := ca.ClientCertificate(*user)
		if err != nil {
			log.Fatalf("generate client certificate: %v", err)
		}
		writePair(*dir, "client-"+*user, clientCert, clientKey)
	}

	fmt.Printf("certificates written to %s\n", *dir)
}

// writePair writes <name>.crt and <name>.key into dir. The key file is
// readable by the owner only.
func writePair(dir, name string, certPEM, keyPEM []byte) {
	certPath := filepath.Join(dir, name+".crt")
	keyPath := filepath.Join(dir, name+".key")
	if err := os.WriteFile(certPath, certPEM, 0o644); err != nil {
		log.Fatalf("write %s: %v", certPath, err)
	}
	if err := os.WriteFile(keyPath, keyPEM, 0o600); err != nil {
		log.Fatalf("write %s: %v", keyPath, err)
	}
}
