package aws

import (
	"context"
	"os"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
)

// MayLoadDotenv seeds the process environment from the dotenv document in
// SSM Parameter Store. A missing SSM_DOTENV_PARAMETER_NAME is a no-op so
// local runs can use a plain environment.
func MayLoadDotenv(ctx context.Context) error {
	parameterName := os.Getenv("SSM_DOTENV_PARAMETER_NAME")
	if parameterName == "" {
		return nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return apperrors.Wrap(err)
	}

	res, err := ssm.NewFromConfig(cfg).GetParameter(ctx, &ssm.GetParameterInput{
		Name:           awssdk.String(parameterName),
		WithDecryption: awssdk.Bool(true),
	})
	if err != nil {
		return apperrors.Wrap(err)
	}
	if res.Parameter == nil || res.Parameter.Value == nil {
		return apperrors.Internalf("ssm parameter %s has no value", parameterName)
	}

	envs, err := godotenv.Unmarshal(*res.Parameter.Value)
	if err != nil {
		return apperrors.Wrap(err)
	}
	for k, v := range envs {
		if err := os.Setenv(k, v); err != nil {
			return apperrors.Wrap(err)
		}
	}
	return nil
}
