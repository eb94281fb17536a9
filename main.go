package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	"SensorInsight/src/config"
	"SensorInsight/src/datapush"
	"SensorInsight/src/datasource/email"
	"SensorInsight/src/datasource/file"
	"SensorInsight/src/processor"
	"SensorInsight/src/storage"
)

var (
	flagThreshold float64
	flagFrom      string
	flagTo        string
	flagColumn    string
	flagOutliers  string
	flagReport    string
	flagConfigDir string
	flagLogsAddr  string
)

var rootCmd = &cobra.Command{
	Use:   "sensorinsight",
	Short: "智能工厂传感器日志分析器",
	Long:  "读取CSV/XLSX传感器日志，计算描述性统计并用z-score检测异常行",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "分析单个传感器日志文件",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyzeCmd,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "监控目录，自动分析新写入的日志文件",
	RunE:  runWatchCmd,
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "定时拉取邮箱里的日志附件并分析",
	RunE:  runFetchCmd,
}

func init() {
	analyzeCmd.Flags().Float64Var(&flagThreshold, "threshold", 0, "z-score异常阈值，0表示默认3.0")
	analyzeCmd.Flags().StringVar(&flagFrom, "from", "", "起始日期(YYYY-MM-DD)，含当天")
	analyzeCmd.Flags().StringVar(&flagTo, "to", "", "结束日期(YYYY-MM-DD)，含当天")
	analyzeCmd.Flags().StringVar(&flagColumn, "column", "", "时序视图选用的传感器列")
	analyzeCmd.Flags().StringVar(&flagOutliers, "outliers", "", "异常行CSV的输出路径")
	analyzeCmd.Flags().StringVar(&flagReport, "report", "", "xlsx分析报告的输出路径")

	watchCmd.Flags().StringVar(&flagConfigDir, "config", "./config", "配置文件目录")
	watchCmd.Flags().StringVar(&flagLogsAddr, "logs-addr", "", "实时日志Web界面监听地址，如 :8080")

	fetchCmd.Flags().StringVar(&flagConfigDir, "config", "./config", "配置文件目录")

	rootCmd.AddCommand(analyzeCmd, watchCmd, fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	opts := processor.Options{
		Threshold:    flagThreshold,
		SeriesColumn: flagColumn,
	}

	var err error
	if opts.Start, err = parseDateFlag(flagFrom); err != nil {
		return err
	}
	if opts.End, err = parseDateFlag(flagTo); err != nil {
		return err
	}

	tbl, err := file.ReadFile(args[0])
	if err != nil {
		return err
	}

	res, err := processor.AnalyzeTable(tbl, opts)
	if err != nil {
		var noData *processor.NoAnalyzableDataError
		if errors.As(err, &noData) {
			// 信息性的终止条件，不算失败
			fmt.Println(err.Error())
			return nil
		}
		return err
	}

	printResult(res)

	if flagOutliers != "" {
		f, err := os.Create(flagOutliers)
		if err != nil {
			return fmt.Errorf("创建输出文件失败: %w", err)
		}
		defer f.Close()
		if err := res.Outliers.WriteCSV(f); err != nil {
			return fmt.Errorf("导出异常行CSV失败: %w", err)
		}
		fmt.Printf("异常行已导出: %s\n", flagOutliers)
	}

	if flagReport != "" {
		if err := processor.WriteReport(res, flagReport); err != nil {
			return err
		}
		fmt.Printf("分析报告已保存: %s\n", flagReport)
	}

	return nil
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("日期格式应为 YYYY-MM-DD: %q", s)
	}
	return t, nil
}

// printResult 把分析结果渲染成终端文本，核心只给数据，文案在这里
func printResult(res *processor.Result) {
	fmt.Printf("行数: %d  数值列: %s\n\n", res.Table.Nrow(), strings.Join(res.Schema.NumericColumns, ", "))

	fmt.Println("== 统计摘要 ==")
	fmt.Printf("%-8s", "")
	for _, col := range res.Summary.Columns {
		fmt.Printf("%14s", col)
	}
	fmt.Println()
	for _, name := range processor.StatNames {
		fmt.Printf("%-8s", name)
		for _, col := range res.Summary.Columns {
			fmt.Printf("%14s", fmtVal(res.Summary.Get(name, col)))
		}
		fmt.Println()
	}

	fmt.Printf("\n== 异常检测 (|z| > %g) ==\n", res.Detection.Threshold)
	fmt.Printf("异常行数: %d / %d\n", res.Detection.Count(), res.Table.Nrow())
	for _, col := range res.Detection.Columns {
		fmt.Printf("  %-12s %s%%\n", col, fmtVal(res.Detection.Ratio[col]))
	}

	fmt.Println("\n== 相关系数矩阵 ==")
	fmt.Printf("%-12s", "")
	for _, col := range res.Correlation.Columns {
		fmt.Printf("%14s", col)
	}
	fmt.Println()
	for i, row := range res.Correlation.Matrix {
		fmt.Printf("%-12s", res.Correlation.Columns[i])
		for _, v := range row {
			fmt.Printf("%14s", fmtVal(v))
		}
		fmt.Println()
	}

	if res.Series != nil {
		fmt.Printf("\n时序视图: %s，共 %d 个点，其中异常点 %d 个\n",
			res.Series.Column, len(res.Series.Values), len(res.Series.Outliers))
	}
}

func fmtVal(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, scfg, err := config.LoadConfig(flagConfigDir, "config.json", "sensors.json")
	if err != nil {
		return err
	}

	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Close()

	if flagLogsAddr != "" {
		go startWebUI(logger, flagLogsAddr)
	}

	monitor, err := file.NewFileMonitor(cfg.Watch.Dir)
	if err != nil {
		return fmt.Errorf("创建目录监控失败: %w", err)
	}
	defer monitor.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandler(cancel, logger)

	pusher := datapush.NewPusher(cfg.Alert.WebhookURL)

	logger.Info(fmt.Sprintf("目录监控已启动: %s，按Ctrl+C退出", cfg.Watch.Dir))
	return monitor.Watch(ctx, func(path string) {
		analyzeAndAlert(path, cfg, scfg, logger, pusher, nil)
	})
}

func runFetchCmd(cmd *cobra.Command, args []string) error {
	cfg, scfg, err := config.LoadConfig(flagConfigDir, "config.json", "sensors.json")
	if err != nil {
		return err
	}

	logger, err := storage.NewLogger(cfg.LogName)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer logger.Close()

	emailClient := email.NewEmailClient(
		cfg.Email.Server,
		cfg.Email.Username,
		cfg.Email.Password)
	handler := email.NewAttachmentHandler(cfg.Email.TargetSubject, cfg.DataDir)
	pusher := datapush.NewPusher(cfg.Alert.WebhookURL)

	c := cron.New()
	interval := time.Duration(cfg.Email.CheckInterval).String()
	cronSpec := fmt.Sprintf("@every %s", interval)

	err = c.AddFunc(cronSpec, func() {
		logger.Info(fmt.Sprintf("开始定时检查(间隔: %v)...", interval))

		newEmail, err := email.CheckAndProcessEmails(emailClient, cfg.Email.TargetSubject, logger)
		if err != nil {
			logger.Error("检查邮件失败: " + err.Error())
			return
		}
		if newEmail == nil {
			return
		}

		paths, err := handler.Handle(newEmail, logger)
		if err != nil {
			logger.Error(fmt.Sprintf("处理邮件失败(UID:%d): %v", newEmail.UID, err))
			return
		}
		for _, path := range paths {
			analyzeAndAlert(path, cfg, scfg, logger, pusher, func(res *processor.Result) {
				sendAlertMail(res, path, cfg, scfg, logger)
			})
		}
	})
	if err != nil {
		logger.Error("创建定时任务失败: " + err.Error())
		return err
	}

	c.Start()
	defer c.Stop()

	logger.Info(fmt.Sprintf("邮件监控服务已启动(检查间隔: %v)，按Ctrl+C退出", interval))
	waitForShutdown(logger)
	return nil
}

// analyzeAndAlert 跑一遍完整分析，发现异常时推送告警。
// onOutliers 不为 nil 时在有异常的情况下额外回调
func analyzeAndAlert(path string, cfg *config.Config, scfg *config.SensorConfig,
	logger *storage.Logger, pusher *datapush.Pusher, onOutliers func(*processor.Result)) {

	logger.Info("开始分析: " + path)
	t1 := time.Now()

	tbl, err := file.ReadFile(path)
	if err != nil {
		logger.Error("读取日志失败: " + err.Error())
		return
	}

	res, err := processor.AnalyzeTable(tbl, processor.Options{Threshold: cfg.Analysis.Threshold})
	if err != nil {
		var noData *processor.NoAnalyzableDataError
		if errors.As(err, &noData) {
			logger.Info(path + ": " + err.Error())
		} else {
			logger.Error("分析失败: " + err.Error())
		}
		return
	}

	logger.Info(fmt.Sprintf("分析完成: %d 行，异常 %d 行，耗时 %v",
		res.Table.Nrow(), res.Detection.Count(), time.Since(t1)))

	if res.Detection.Count() > 0 {
		if err := pusher.Push(datapush.AlertMessage{
			Title:        "传感器异常告警",
			Text:         buildAlertBody(res, scfg),
			Source:       filepath.Base(path),
			OutlierCount: res.Detection.Count(),
			TotalRows:    res.Table.Nrow(),
			Ratio:        res.Detection.Ratio,
		}); err != nil {
			logger.Error(err.Error())
		}

		if cfg.ReportName != "" {
			reportPath := filepath.Join(cfg.DataDir, cfg.ReportName)
			if err := processor.WriteReport(res, reportPath); err != nil {
				logger.Error(err.Error())
			} else {
				logger.Info("分析报告已保存: " + reportPath)
			}
		}

		if onOutliers != nil {
			onOutliers(res)
		}
	}

	if err := logger.CheckRotate(cfg.LogMaxSize); err != nil {
		logger.Warning("日志轮转失败: " + err.Error())
	}
}

// buildAlertBody 用传感器配置里的展示名和单位组织告警正文
func buildAlertBody(res *processor.Result, scfg *config.SensorConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "检测到 %d 行异常（共 %d 行）\n", res.Detection.Count(), res.Table.Nrow())
	for _, col := range res.Detection.Columns {
		label := scfg.Label(col)
		if unit := scfg.Unit(col); unit != "" {
			label = fmt.Sprintf("%s(%s)", label, unit)
		}
		fmt.Fprintf(&b, "%s: 异常比例 %s%%\n", label, fmtVal(res.Detection.Ratio[col]))
	}
	return b.String()
}

func sendAlertMail(res *processor.Result, path string, cfg *config.Config,
	scfg *config.SensorConfig, logger *storage.Logger) {

	if cfg.SendEmail.Server == "" || cfg.SendEmail.To == "" {
		return
	}

	csvBytes, err := res.Outliers.CSVBytes()
	if err != nil {
		logger.Error("导出异常行失败: " + err.Error())
		return
	}

	subject := fmt.Sprintf("传感器异常告警: %s", filepath.Base(path))
	if err := email.SendAlert(cfg, subject, buildAlertBody(res, scfg), csvBytes, "outliers.csv"); err != nil {
		logger.Error(err.Error())
		return
	}
	logger.Info("告警邮件已发送: " + cfg.SendEmail.To)
}

// startWebUI 启动一个简单的Web界面来显示实时日志
func startWebUI(logger *storage.Logger, addr string) {
	http.HandleFunc("/logs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		logChan := logger.Subscribe()

		for {
			select {
			case msg := <-logChan:
				if _, err := fmt.Fprint(w, msg); err != nil {
					return
				}
				if f, ok := w.(http.Flusher); ok {
					f.Flush()
				}
			case <-r.Context().Done():
				return
			}
		}
	})

	http.ListenAndServe(addr, nil)
}

// setupSignalHandler 设置信号处理器
func setupSignalHandler(cancel context.CancelFunc, logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info(fmt.Sprintf("收到信号: %v，正在退出...", sig))
		cancel()
	}()
}

func waitForShutdown(logger *storage.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("收到信号: " + sig.String() + "，正在退出...")
}
