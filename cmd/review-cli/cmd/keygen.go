package cmd

import (
	"crypto/rand"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"review-core/pkg/keystore"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an encrypted notary key file",
	Long:  `Generates a fresh 32-byte notary seed and stores it AES-GCM encrypted under a passphrase.`,
	Run: func(cmd *cobra.Command, args []string) {
		outputFile, _ := cmd.Flags().GetString("output")

		seed := make([]byte, 32)
		if _, err := rand.Read(seed); err != nil {
			fmt.Printf("entropy source failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Print("Choose a keystore passphrase: ")
		passphrase, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Printf("reading passphrase failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Print("Repeat passphrase: ")
		confirm, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			fmt.Printf("reading passphrase failed: %v\n", err)
			os.Exit(1)
		}
		if string(passphrase) != string(confirm) {
			fmt.Println("passphrases do not match")
			os.Exit(1)
		}

		ek, err := keystore.Encrypt(seed, string(passphrase))
		if err != nil {
			fmt.Printf("encrypting seed failed: %v\n", err)
			os.Exit(1)
		}
		if err := keystore.SaveToFile(ek, outputFile); err != nil {
			fmt.Printf("writing key file failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Notary key written to %s\n", outputFile)
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringP("output", "o", "notary.json", "output key file path")
}
