// Package di builds the process-wide dependency graph. Everything is
// constructed once, up front, in NewContainer; nothing is lazy.
package di

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/akihokurino/canvas-nft-generator/application"
	"github.com/akihokurino/canvas-nft-generator/aws"
	"github.com/akihokurino/canvas-nft-generator/ddb"
	"github.com/akihokurino/canvas-nft-generator/ethereum"
	"github.com/akihokurino/canvas-nft-generator/internalapi"
	"github.com/akihokurino/canvas-nft-generator/ipfs"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, read from the environment after the
// SSM dotenv bootstrap.
type Config struct {
	EthereumURL        string `env:"ETHEREUM_URL,required"`
	WalletSecret       string `env:"WALLET_SECRET,required"`
	InternalToken      string `env:"INTERNAL_TOKEN,required"`
	InternalAPIBaseURL string `env:"INTERNAL_API_BASE_URL,required"`
	IpfsURL            string `env:"IPFS_URL,required"`
	IpfsKey            string `env:"IPFS_KEY,required"`
	IpfsSecret         string `env:"IPFS_SECRET,required"`
	OpenSeaFunctionARN string `env:"OPENSEA_SDK_LAMBDA_ARN,required"`
	TaskTopicARN       string `env:"TASK_SNS_TOPIC_ARN,required"`
	MailFrom           string `env:"MAIL_FROM"`
	MailTo             string `env:"MAIL_TO"`
}

// Container holds the wired application graph.
type Container struct {
	Config        Config
	Logger        *slog.Logger
	Wallet        *ethereum.Wallet
	Canvas        *ethereum.Canvas
	ContractRepo  *ddb.ContractRepository
	TokenRepo     *ddb.TokenRepository
	InternalAPI   *internalapi.Client
	Ipfs          *ipfs.Client
	OpenSea       *aws.OpenSeaAdapter
	TaskPublisher *aws.SNSAdapter
	Mailer        *aws.SESAdapter
	NftApp        *application.NftApp
}

// NewContainer loads configuration and wires every component.
func NewContainer(ctx context.Context) (*Container, error) {
	if err := aws.MayLoadDotenv(ctx); err != nil {
		return nil, err
	}
	conf, err := env.ParseAs[Config]()
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	awsConf, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	wallet, err := ethereum.NewWallet(conf.WalletSecret, conf.EthereumURL, conf.InternalToken)
	if err != nil {
		return nil, err
	}
	canvas, err := ethereum.NewCanvas(conf.WalletSecret, conf.EthereumURL, logger)
	if err != nil {
		return nil, err
	}

	internalAPI, err := internalapi.NewClient(conf.InternalAPIBaseURL, conf.InternalToken, nil)
	if err != nil {
		return nil, err
	}
	ipfsCli, err := ipfs.NewClient(conf.IpfsURL, conf.IpfsKey, conf.IpfsSecret, nil)
	if err != nil {
		return nil, err
	}

	contractRepo := ddb.NewContractRepository(dynamodb.NewFromConfig(awsConf))
	tokenRepo := ddb.NewTokenRepository(dynamodb.NewFromConfig(awsConf))
	openSea := aws.NewOpenSeaAdapter(lambda.NewFromConfig(awsConf), conf.OpenSeaFunctionARN)
	taskPublisher := aws.NewSNSAdapter(sns.NewFromConfig(awsConf), conf.TaskTopicARN)
	mailer := aws.NewSESAdapter(sesv2.NewFromConfig(awsConf), conf.MailFrom)

	nftApp := application.NewNftApp(
		wallet.WalletAddress(),
		internalAPI,
		ipfsCli,
		canvas,
		openSea,
		contractRepo,
		tokenRepo,
		http.DefaultClient,
		logger,
	)

	return &Container{
		Config:        conf,
		Logger:        logger,
		Wallet:        wallet,
		Canvas:        canvas,
		ContractRepo:  contractRepo,
		TokenRepo:     tokenRepo,
		InternalAPI:   internalAPI,
		Ipfs:          ipfsCli,
		OpenSea:       openSea,
		TaskPublisher: taskPublisher,
		Mailer:        mailer,
		NftApp:        nftApp,
	}, nil
}
