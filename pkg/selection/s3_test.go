package selection

import (
	"bytes"
	"context"
	"io/ioutil"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/City-Bureau/seerchat/pkg/chat"
)

type fakeS3 struct {
	s3iface.S3API
	objects map[string][]byte
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[*input.Bucket+"/"+*input.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: ioutil.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := ioutil.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*input.Bucket+"/"+*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func TestS3PersisterRoundTrip(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{}}
	persister := &S3Persister{Client: client, Bucket: "seerchat"}

	missing, err := persister.Load(context.Background(), "5")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, persister.Save(context.Background(), "5", Selection{ActingSeer: &irma}))
	assert.Contains(t, client.objects, "seerchat/selections/5.json")

	loaded, err := persister.Load(context.Background(), "5")
	require.NoError(t, err)
	require.NotNil(t, loaded.ActingSeer)
	assert.Equal(t, chat.ID("3"), loaded.ActingSeer.ID)
	assert.Nil(t, loaded.Counterpart)
}
