package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/repository"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/seed"
	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var file string
	var name string
	var pool domain.ResourcePool

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机场景, 3: 导入 YAML 场景文件, 4: 从 CSV 导入需求点)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&file, "file", "", "操作 3 和 4 读取的文件路径")
	flag.StringVar(&name, "name", "", "操作 4 创建的场景名称")
	flag.IntVar(&pool.TotalVolunteers, "volunteers", 0, "操作 4 中可用的志愿者总数")
	flag.IntVar(&pool.TotalTrucks, "trucks", 0, "操作 4 中可用的卡车总数")
	flag.IntVar(&pool.TotalPackages, "packages", 0, "操作 4 中可用的物资包总数")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for range n {
			user, err := utils.GenerateRandomUser(cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的场景数量")
			return
		}

		cnt := 0
		for range n {
			sc := utils.GenerateRandomScenario()
			if err := repo.CreateScenario(sc); err != nil {
				slog.Error("无法插入场景", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入场景成功", slog.Int("count", cnt))
	case 3:
		if file == "" {
			slog.Error("请通过 -file 指定场景文件")
			return
		}

		if _, err := seed.ImportScenarioFile(repo, file); err != nil {
			slog.Error("无法导入场景文件", slog.String("error", err.Error()))
		}
	case 4:
		if file == "" || name == "" {
			slog.Error("请通过 -file 和 -name 指定 CSV 文件和场景名称")
			return
		}

		if _, err := seed.ImportSitesCSVFile(repo, file, name, pool); err != nil {
			slog.Error("无法导入需求点", slog.String("error", err.Error()))
		}
	default:
		slog.Error("指定的操作非法")
	}
}
