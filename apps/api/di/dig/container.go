package dig_container

import (
	"expvar"
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/sodiem/apps/api/echo"
	"github.com/trezcool/sodiem/core"
	"github.com/trezcool/sodiem/core/gradebook"
	logsvc "github.com/trezcool/sodiem/services/logger"
	"github.com/trezcool/sodiem/storage/database/dummy"
)

// import counters exposed under /debug/vars
var (
	importsCount    = expvar.NewInt("imports")
	importRowsCount = expvar.NewInt("importRows")
	importErrsCount = expvar.NewInt("importErrors")
)

type ServerParams struct {
	dig.In
	Conf       *core.Config
	Logger     core.Logger
	GradeSvc   gradebook.ServiceInterface
	Validate   *validator.Validate
	Translator ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	return logsvc.NewLogger(os.Stdout, "API : ", conf)
}

func newDB(conf *core.Config, logger core.Logger) *dummydb.DB {
	db, err := dummydb.Open()
	if err != nil {
		logger.Fatal("opening in-memory store: "+err.Error(), err)
	}
	if conf.Seed {
		db.Seed(gradebook.SeedClasses()...)
		logger.Info("seeded demo classes")
	}
	return db
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	gradebook.InitValidators(validate, translator)
	return validate
}

func newServer(p ServerParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:       p.Conf,
		Logger:     p.Logger,
		GradeSvc:   p.GradeSvc,
		Validate:   p.Validate,
		Translator: p.Translator,
	})
}

// meteredService counts imports for expvar.
type meteredService struct {
	gradebook.ServiceInterface
}

func (svc meteredService) Import(records []gradebook.ImportRecord) gradebook.ImportSummary {
	summary := svc.ServiceInterface.Import(records)
	importsCount.Add(1)
	importRowsCount.Add(int64(summary.Rows))
	importErrsCount.Add(int64(len(summary.Errors)))
	return summary
}

func decorateService(svc gradebook.ServiceInterface) gradebook.ServiceInterface {
	return meteredService{svc}
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDB))
	must(c.Provide(dummydb.NewClassRepository))
	must(c.Provide(gradebook.DefaultCatalog))
	must(c.Provide(newTranslator))
	must(c.Provide(newValidator))
	must(c.Provide(gradebook.NewService, dig.As(new(gradebook.ServiceInterface))))
	must(c.Decorate(decorateService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
