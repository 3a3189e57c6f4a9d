// Package modexia provides a Go client SDK for Modexia, a payment
// platform that lets autonomous agents hold USDC wallets and pay each
// other over a plain HTTP API.
//
// The SDK wraps the API behind a small typed surface and handles the
// plumbing that matters in practice: retry with exponential backoff and
// jitter for transient failures, idempotency keys so retried submissions
// never double-pay, and typed errors that separate rejected credentials,
// business failures, and network trouble.
//
// Basic usage:
//
//	client, err := modexia.New("mx_test_your-api-key")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Check the wallet
//	balance, err := client.RetrieveBalance(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Balance:", balance)
//
//	// Pay another agent and wait for on-chain confirmation
//	receipt, err := client.Transfer(ctx, "0xProviderAddress", 1.50)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Status:", receipt.Status, "TxHash:", receipt.TxHash)
package modexia
