package selection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// S3Persister saves selections as JSON objects in a bucket
type S3Persister struct {
	Client s3iface.S3API
	Bucket string
}

func objectKey(owner string) string {
	return fmt.Sprintf("selections/%s.json", owner)
}

// Load reads the object of owner, a missing object is not an error
func (p *S3Persister) Load(ctx context.Context, owner string) (*Selection, error) {
	out, err := p.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.Bucket),
		Key:    aws.String(objectKey(owner)),
	})
	if aerr, ok := err.(awserr.Error); ok && aerr.Code() == s3.ErrCodeNoSuchKey {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	body, err := ioutil.ReadAll(out.Body)
	if err != nil {
		return nil, err
	}
	var selection Selection
	if err := json.Unmarshal(body, &selection); err != nil {
		return nil, err
	}
	return &selection, nil
}

// Save writes the object of owner
func (p *S3Persister) Save(ctx context.Context, owner string, selection Selection) error {
	selectionJSON, err := json.Marshal(selection)
	if err != nil {
		return err
	}
	_, err = p.Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.Bucket),
		Key:         aws.String(objectKey(owner)),
		ACL:         aws.String("private"),
		Body:        bytes.NewReader(selectionJSON),
		ContentType: aws.String("application/json"),
	})
	return err
}
