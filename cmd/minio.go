package cmd

import (
	"context"
	"fmt"

	"melodify/storage"

	"github.com/spf13/cobra"
)

var (
	minioPrefix string
	minioBucket string
	minioStats  bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶管理",
	Long:  `确保上传所需的存储桶存在并公开可读，然后列出存储桶中的文件或统计信息。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("开始连接MinIO服务器...")

		cfg, err := setup()
		if err != nil {
			return err
		}
		fmt.Printf("MinIO配置: %s\n", cfg.MinioEndpoint)

		store, err := storage.NewMinioStore(cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		ctx := context.Background()
		buckets := []string{cfg.AudioBucket, cfg.ReelAudioBucket, cfg.CoverBucket}
		if err := store.EnsureBuckets(ctx, buckets...); err != nil {
			return err
		}
		if minioBucket != "" {
			buckets = []string{minioBucket}
		}

		for _, bucket := range buckets {
			objects, stats, err := store.ListObjects(ctx, bucket, minioPrefix)
			if err != nil {
				return fmt.Errorf("列出文件失败: %w", err)
			}
			if !minioStats {
				fmt.Printf("\n%s (前缀: %q)\n", bucket, minioPrefix)
				for _, obj := range objects {
					fmt.Printf("  %-60s %10d  %s\n", obj.Key, obj.Size, obj.LastModified.Format("2006-01-02 15:04:05"))
				}
			}
			fmt.Println(storage.FormatStats(bucket, stats))
		}

		fmt.Println("\nMinIO操作完成！")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件")
	minioCmd.Flags().StringVarP(&minioBucket, "bucket", "b", "", "只查看指定存储桶")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "只显示存储桶统计信息")

	minioCmd.Example = `  # 列出所有上传存储桶中的文件
  melodify minio

  # 按前缀过滤封面
  melodify minio -b covers -p "cover_"

  # 只显示统计信息
  melodify minio -s`
}
