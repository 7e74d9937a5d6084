package storage

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Credential is one stored basic-auth pair for a credential service.
type Credential struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// CredentialStore defines the interface for credential storage operations
type CredentialStore interface {
	GetCredential(service string) (Credential, error)
	SetCredential(service string, cred Credential) error
}

// S3CredentialStore implements CredentialStore using AWS S3
type S3CredentialStore struct {
	client     *s3.Client
	bucketName string
	encryptKey []byte // 32-byte key for AES-256
}

type credentialRecord struct {
	Payload string `json:"payload"`
}

// NewS3CredentialStore creates a new S3CredentialStore instance
func NewS3CredentialStore(client *s3.Client, bucketName string, encryptKey []byte) *S3CredentialStore {
	return &S3CredentialStore{
		client:     client,
		bucketName: bucketName,
		encryptKey: encryptKey,
	}
}

// GetCredential retrieves and decrypts the credential pair stored for the
// given service name
func (s *S3CredentialStore) GetCredential(service string) (Credential, error) {
	key := s.getKey(service)

	result, err := s.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return Credential{}, fmt.Errorf("failed to get credential from S3: %v", err)
	}
	defer result.Body.Close()

	var record credentialRecord
	if err := json.NewDecoder(result.Body).Decode(&record); err != nil {
		return Credential{}, fmt.Errorf("failed to decode credential record: %v", err)
	}

	// Decrypt the credential payload
	plaintext, err := s.decrypt(record.Payload)
	if err != nil {
		return Credential{}, fmt.Errorf("failed to decrypt credential: %v", err)
	}

	var cred Credential
	if err := json.Unmarshal([]byte(plaintext), &cred); err != nil {
		return Credential{}, fmt.Errorf("failed to unmarshal credential: %v", err)
	}

	return cred, nil
}

// SetCredential encrypts and stores a credential pair for the given service
// name
func (s *S3CredentialStore) SetCredential(service string, cred Credential) error {
	key := s.getKey(service)

	plaintext, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %v", err)
	}

	// Encrypt the credential payload
	encrypted, err := s.encrypt(string(plaintext))
	if err != nil {
		return fmt.Errorf("failed to encrypt credential: %v", err)
	}

	record := credentialRecord{Payload: encrypted}
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %v", err)
	}

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
		Body:   bytes.NewReader(jsonData),
	})
	if err != nil {
		return fmt.Errorf("failed to store credential in S3: %v", err)
	}

	return nil
}

// encrypt encrypts the payload using AES-GCM
func (s *S3CredentialStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	// Generate a random nonce
	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	// Encrypt the data
	ciphertext := aesGCM.Seal(nonce, nonce, []byte(plaintext), nil)

	// Encode the result in base64
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// decrypt decrypts the payload using AES-GCM
func (s *S3CredentialStore) decrypt(encryptedText string) (string, error) {
	// Decode the base64 string
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedText)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(s.encryptKey)
	if err != nil {
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(ciphertext) < aesGCM.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	// Split nonce and ciphertext
	nonce := ciphertext[:aesGCM.NonceSize()]
	ciphertext = ciphertext[aesGCM.NonceSize():]

	// Decrypt the data
	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}

	return string(plaintext), nil
}

// getKey generates the S3 key for a service's credential record
func (s *S3CredentialStore) getKey(service string) string {
	return fmt.Sprintf("credentials/%s.json", service)
}
